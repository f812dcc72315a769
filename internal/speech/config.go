package speech

// Audio format requested from Azure. Headerless PCM matches what the
// narration pipeline decodes: 16-bit little-endian mono at 24 kHz.
const DefaultAudioFormat = "raw-24khz-16bit-mono-pcm"

// Default voices per narration locale.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const (
	DefaultVoice        = "zh-TW-HsiaoChenNeural"
	DefaultEnglishVoice = "en-US-AvaNeural"
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// VoiceFor picks the default voice for a locale such as "en" or "zh-TW".
func VoiceFor(locale string) string {
	if locale == "en" || locale == "en-US" {
		return DefaultEnglishVoice
	}
	return DefaultVoice
}

// xmlLangFor maps a voice name to its SSML xml:lang, e.g.
// "zh-TW-HsiaoChenNeural" -> "zh-TW".
func xmlLangFor(voice string) string {
	if len(voice) >= 5 && voice[2] == '-' {
		return voice[:5]
	}
	return "en-US"
}
