package provider

// ToolChoice controls whether the model may, must, or must not call tools.
type ToolChoice string

const (
	ToolChoiceDefault  ToolChoice = ""
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ModelSettings are per-invocation sampling options.
// Pointer and zero values mean "backend default".
type ModelSettings struct {
	Temperature *float32
	TopP        *float32
	MaxTokens   int
	ToolChoice  ToolChoice
}

// Merge returns s with every field set in override replacing its counterpart.
func (s ModelSettings) Merge(override ModelSettings) ModelSettings {
	out := s
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.TopP != nil {
		out.TopP = override.TopP
	}
	if override.MaxTokens != 0 {
		out.MaxTokens = override.MaxTokens
	}
	if override.ToolChoice != ToolChoiceDefault {
		out.ToolChoice = override.ToolChoice
	}
	return out
}

// Float32 returns a pointer to v, for ModelSettings literals.
func Float32(v float32) *float32 {
	return &v
}
