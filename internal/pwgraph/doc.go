// Package pwgraph inspects and edits the PipeWire link graph through pw-link.
//
// Links are parsed from `pw-link --id --links`, where each port header line
// is followed by indented `|->` (outbound) or `|<-` (inbound) lines carrying
// the link ID. Muting the effects engine means disconnecting every link from
// its monitor-output node that does not terminate at the recorder.
package pwgraph
