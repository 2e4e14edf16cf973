package config

const (
	defaultOutputDirName         = "output"
	defaultTempFile              = "temp.wav"
	defaultOutputExtension       = "mp3"
	defaultEffectsBinary         = "easyeffects"
	defaultEffectsProcessName    = "easyeffects"
	defaultPreset                = PresetAuto
	defaultEffectsSettleMillis   = 3000
	defaultEffectsPollMillis     = 100
	defaultReadiness             = ReadinessPoll
	defaultGraphBinary           = "pw-link"
	defaultMonitorNode           = "ee_soe_output_level"
	defaultRecorderNode          = "pw-record"
	defaultDisconnectStrategy    = DisconnectEndpoint
	defaultRecorderBinary        = "pw-record"
	defaultRecorderTarget        = "0"
	defaultRecorderSettleMillis  = 100
	defaultPlayerBinary          = "ffplay"
	defaultEncoderBinary         = "ffmpeg"
	defaultEncoderOverwrite      = true
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultConfigPathUnexpanded  = "~/.config/eerecord/config.toml"
	defaultProjectConfigFileName = "eerecord.toml"
	defaultLockFileName          = "eerecord.lock"
)

// PresetAuto is the sentinel preset value that leaves the engine on its own default.
const PresetAuto = "auto"

// Readiness strategies for waiting on audio graph nodes.
const (
	ReadinessPoll  = "poll"
	ReadinessSleep = "sleep"
)

// Disconnect strategies for selecting monitor-to-speaker links.
const (
	DisconnectEndpoint = "endpoint"
	DisconnectAdjacent = "adjacent"
)

func defaultInputExtensions() []string {
	return []string{"mp3", "m4a"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDirName: defaultOutputDirName,
			TempFile:      defaultTempFile,
			LockDir:       defaultLockDir(),
		},
		Input: Input{
			Extensions: defaultInputExtensions(),
		},
		Output: Output{
			Extension: defaultOutputExtension,
		},
		Effects: Effects{
			Binary:       defaultEffectsBinary,
			ProcessName:  defaultEffectsProcessName,
			Preset:       defaultPreset,
			SettleMillis: defaultEffectsSettleMillis,
			PollMillis:   defaultEffectsPollMillis,
			Readiness:    defaultReadiness,
		},
		Graph: Graph{
			Binary:             defaultGraphBinary,
			MonitorNode:        defaultMonitorNode,
			RecorderNode:       defaultRecorderNode,
			DisconnectStrategy: defaultDisconnectStrategy,
		},
		Recorder: Recorder{
			Binary:       defaultRecorderBinary,
			Target:       defaultRecorderTarget,
			SettleMillis: defaultRecorderSettleMillis,
		},
		Player: Player{
			Binary: defaultPlayerBinary,
		},
		Encoder: Encoder{
			Binary:    defaultEncoderBinary,
			Overwrite: defaultEncoderOverwrite,
		},
		Logging: Logging{
			Format:      defaultLogFormat,
			Level:       defaultLogLevel,
			OutputPaths: []string{"stderr"},
		},
	}
}
