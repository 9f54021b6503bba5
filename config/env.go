package config

// Logger настройки логирования
type Logger struct {
	Level  string `env:"LOGGER_LEVEL" envDefault:"info"`
	AsJSON bool   `env:"LOGGER_AS_JSON" envDefault:"false"`
}

// Database база известных компонентов
type Database struct {
	Path    string `env:"BOMSPLIT_DB_PATH" envDefault:"components.db"`
	Enabled bool   `env:"BOMSPLIT_DB_ENABLED" envDefault:"true"`
}

// Split параметры разбора спецификаций
type Split struct {
	// RulesPath файл правил классификации (JSON или YAML)
	RulesPath string `env:"BOMSPLIT_RULES_PATH" envDefault:"rules.json"`
	Strict    bool   `env:"BOMSPLIT_STRICT" envDefault:"false"`
	TxtDir    string `env:"BOMSPLIT_TXT_DIR"`
	Combine   bool   `env:"BOMSPLIT_COMBINE" envDefault:"false"`
}
