package config

// Module names understood by the registry. Kept here so config validation
// does not import the modules package.
var knownModules = []string{"members", "events", "inventory", "minutes", "training", "scheduling"}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./logbook.db"
	}
	if c.NATS.URL == "" {
		c.NATS.URL = "nats://localhost:4222"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "logbook.inventory.changed"
	}
	if c.Stream.Backoff == "" {
		c.Stream.Backoff = string(RetryBackoffExponential)
	}
	if c.Stream.InitialDelayMS == 0 {
		c.Stream.InitialDelayMS = 1000
	}
	if c.Stream.MaxDelayMS == 0 {
		c.Stream.MaxDelayMS = 30000
	}
	if c.Readiness.Backoff == "" {
		c.Readiness.Backoff = string(RetryBackoffLinear)
	}
	if c.Readiness.InitialDelayMS == 0 {
		c.Readiness.InitialDelayMS = 2000
	}
	if c.Readiness.MaxDelayMS == 0 {
		c.Readiness.MaxDelayMS = 10000
	}
	if c.Readiness.MaxAttempts == 0 {
		c.Readiness.MaxAttempts = 30
	}
	if len(c.Modules.Enabled) == 0 {
		c.Modules.Enabled = []string{"members", "events", "inventory", "minutes"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}
