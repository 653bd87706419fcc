package config

type ServiceConfig struct {
	Name           string         `yaml:"name"`
	Environment    string         `yaml:"environment"`
	Version        string         `yaml:"version"`
	ClientURL      string         `yaml:"client_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	CommissionRate string         `yaml:"commission_rate"`
	Paystack       PaystackConfig `yaml:"paystack"`
}

type PaystackConfig struct {
	SecretKey     string     `yaml:"secret_key"`
	WebhookSecret string     `yaml:"webhook_secret"`
	CallbackURL   string     `yaml:"callback_url"`
	UseMock       bool       `yaml:"use_mock"`
	Mock          MockConfig `yaml:"mock"`
}

type MockConfig struct {
	AutoApprove bool     `yaml:"auto_approve"`
	FailureRate int      `yaml:"failure_rate"`
	Delay       Duration `yaml:"delay"`
}
