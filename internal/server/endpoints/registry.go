package endpoints

import (
	"github.com/jackzampolin/easel/internal/api"
)

// All returns every endpoint served by the API.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Template endpoints
		&ListTemplatesEndpoint{},
		&CreateTemplateEndpoint{},
		&GetTemplateEndpoint{},
		&DeleteTemplateEndpoint{},
		&ValidateTemplateEndpoint{},
		&ExpandTemplateEndpoint{},

		// Variable pool endpoints
		&ListVariablesEndpoint{},
		&SetVariableEndpoint{},
		&GetVariableEndpoint{},
		&UpdateVariableEndpoint{},
		&DeleteVariableEndpoint{},

		// Prompt history endpoints
		&ListPromptsEndpoint{},
		&FavoritePromptEndpoint{},
		&TagPromptEndpoint{},
		&DeletePromptEndpoint{},

		// Generation endpoints
		&GenerateEndpoint{},
		&ListGenerationsEndpoint{},
		&RateGenerationEndpoint{},

		// Stats endpoints
		&DailyStatsEndpoint{},
		&StatsSummaryEndpoint{},
	}
}

// TemplateCommands returns the endpoints grouped under "api templates".
func TemplateCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListTemplatesEndpoint{},
		&CreateTemplateEndpoint{},
		&GetTemplateEndpoint{},
		&DeleteTemplateEndpoint{},
		&ValidateTemplateEndpoint{},
		&ExpandTemplateEndpoint{},
	}
}

// VariableCommands returns the endpoints grouped under "api variables".
func VariableCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListVariablesEndpoint{},
		&SetVariableEndpoint{},
		&GetVariableEndpoint{},
		&UpdateVariableEndpoint{},
		&DeleteVariableEndpoint{},
	}
}

// PromptCommands returns the endpoints grouped under "api prompts".
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
		&FavoritePromptEndpoint{},
		&TagPromptEndpoint{},
		&DeletePromptEndpoint{},
	}
}

// GenerationCommands returns the endpoints grouped under "api generations".
func GenerationCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListGenerationsEndpoint{},
		&RateGenerationEndpoint{},
	}
}

// StatsCommands returns the endpoints grouped under "api stats".
func StatsCommands() []api.Endpoint {
	return []api.Endpoint{
		&DailyStatsEndpoint{},
		&StatsSummaryEndpoint{},
	}
}
