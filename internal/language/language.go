// Package language holds the transcription language table shared by the
// configuration layer and the backend adapters.
package language

// Language is one transcription language selectable in configuration.
type Language struct {
	Code string // ISO 639-1 code (e.g. "en", "es", "zh")
	Name string // English name (e.g. "English", "Spanish")
}

// Auto is the zero language: backends detect the language themselves.
var Auto = Language{Code: "", Name: "Auto-detect"}

// languages is the intersection of the codes accepted by the Whisper-based
// backends and AssemblyAI's language_code parameter.
var languages = []Language{
	{Code: "ar", Name: "Arabic"},
	{Code: "zh", Name: "Chinese"},
	{Code: "cs", Name: "Czech"},
	{Code: "da", Name: "Danish"},
	{Code: "nl", Name: "Dutch"},
	{Code: "en", Name: "English"},
	{Code: "fi", Name: "Finnish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "el", Name: "Greek"},
	{Code: "he", Name: "Hebrew"},
	{Code: "hi", Name: "Hindi"},
	{Code: "hu", Name: "Hungarian"},
	{Code: "id", Name: "Indonesian"},
	{Code: "it", Name: "Italian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "no", Name: "Norwegian"},
	{Code: "pl", Name: "Polish"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ro", Name: "Romanian"},
	{Code: "ru", Name: "Russian"},
	{Code: "es", Name: "Spanish"},
	{Code: "sv", Name: "Swedish"},
	{Code: "th", Name: "Thai"},
	{Code: "tr", Name: "Turkish"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "vi", Name: "Vietnamese"},
}

var codeIndex map[string]Language

func init() {
	codeIndex = make(map[string]Language, len(languages)+1)
	codeIndex[""] = Auto
	for _, lang := range languages {
		codeIndex[lang.Code] = lang
	}
}

// FromCode returns the Language for the given code, or Auto if the code is
// not recognized.
func FromCode(code string) Language {
	if lang, ok := codeIndex[code]; ok {
		return lang
	}
	return Auto
}

// List returns all supported languages (excluding Auto).
func List() []Language {
	result := make([]Language, len(languages))
	copy(result, languages)
	return result
}

// IsValidCode reports whether the code is recognized. The empty string is
// valid and means auto-detection.
func IsValidCode(code string) bool {
	_, ok := codeIndex[code]
	return ok
}
