package live

// DefaultModel is the native-audio conversation model.
const DefaultModel = "gemini-2.5-flash-native-audio-preview-12-2025"

// Audio and video capture parameters. Input and output rates differ; the
// service consumes 16 kHz and produces 24 kHz regardless of input rate.
const (
	InputSampleRate  = 16000
	OutputSampleRate = 24000
	AudioBlockSize   = 4096
	DefaultFrameRate = 1
	JPEGQuality      = 50
)

// Voices lists the prebuilt voice names the service accepts.
var Voices = []string{"Zephyr", "Puck", "Charon", "Kore", "Fenrir"}

// DefaultSystemInstruction is the default conversational persona.
const DefaultSystemInstruction = `You are the SentientSenses Empathy Engine.
You can see facial expressions and hear voice prosody.
1. Monitor the user's emotional state constantly.
2. Respond empathetically.
3. If the user's face doesn't match their words, point it out kindly.
4. Keep responses concise but emotionally intelligent.`

// Personas maps preset names to alternate system instructions.
var Personas = map[string]string{
	"empathy": DefaultSystemInstruction,

	"label-lens": `You are LabelLens, a highly intelligent and compassionate assistant for the visually impaired and elderly.
Your primary tasks:
1. Identify items, labels, medications, and controls in the camera view.
2. Provide audio-first guidance. If a user asks "Which one can I take?", analyze the bottles, use your medical knowledge (reason with caution), and guide their hand ("Move slightly left... yes, the red bottle").
3. Be concise and clear. Use spatial directions relative to the camera frame (top-left, bottom-right, etc.).
4. If reading complex machinery or dashboards, explain controls step-by-step.
5. Always prioritize safety. Mention expiration dates if visible.`,

	"observer": `You are LiveMind, an autonomous visual analysis engine.

YOUR MODE: CONTINUOUS OBSERVATION.

1. Continuously analyze the video stream provided.
2. You do NOT need to wait for the user to speak. If you see a significant object, text, or event, announce it immediately.
3. Focus on: Identification, Safety Hazards, and Text Extraction.
4. Keep your analysis concise (1-2 sentences) so you can keep up with the real-time feed.
5. Speak directly to the user about what is in front of them.
6. Notify immediately when there is a change in image or situation change.`,
}

// Persona returns the system instruction for a preset name.
func Persona(name string) (string, bool) {
	s, ok := Personas[name]
	return s, ok
}

// Settings are the per-session toggles supplied at start. They are immutable
// for the lifetime of one active session; changing them requires stop and
// restart.
type Settings struct {
	CameraEnabled bool   `json:"cameraEnabled" yaml:"cameraEnabled"`
	MicEnabled    bool   `json:"micEnabled" yaml:"micEnabled"`
	VoiceName     string `json:"voiceName" yaml:"voiceName"`
}

// DefaultSettings returns the default session settings.
func DefaultSettings() Settings {
	return Settings{CameraEnabled: true, MicEnabled: true, VoiceName: "Zephyr"}
}

// ValidVoice reports whether name is one of the accepted voices.
func ValidVoice(name string) bool {
	for _, v := range Voices {
		if v == name {
			return true
		}
	}
	return false
}

// Config holds the static controller configuration.
type Config struct {
	// Model is the conversation model name. Empty means DefaultModel.
	Model string

	// SystemInstruction overrides the default persona when non-empty.
	SystemInstruction string

	// InputRate, OutputRate, BlockSize and FrameRate fall back to the
	// package constants when zero.
	InputRate  int
	OutputRate int
	BlockSize  int
	FrameRate  int

	// Client identity recorded with each session.
	UserID           string
	ClientIdentifier string
	DeviceType       string
	ScreenRes        string

	// Optional geolocation; absence never blocks session creation.
	Latitude  *float64
	Longitude *float64
}

func (c *Config) setDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SystemInstruction == "" {
		c.SystemInstruction = DefaultSystemInstruction
	}
	if c.InputRate <= 0 {
		c.InputRate = InputSampleRate
	}
	if c.OutputRate <= 0 {
		c.OutputRate = OutputSampleRate
	}
	if c.BlockSize <= 0 {
		c.BlockSize = AudioBlockSize
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
}
