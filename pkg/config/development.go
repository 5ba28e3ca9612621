package config

func loadDevelopmentConfig(cfg *Config) {
	cfg.DatabaseDebug = true
	if cfg.ServerHost == "0.0.0.0" {
		cfg.ServerHost = "127.0.0.1"
	}
}

func loadTestConfig(cfg *Config) {
	cfg.DatabaseDriver = DatabaseDriverSQLite
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.ServerHost = "127.0.0.1"
}
