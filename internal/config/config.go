package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	HTTP     HTTPConfig     `yaml:"http"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Payment  PaymentConfig  `yaml:"payment"`
	Auth     AuthConfig     `yaml:"auth"`
	Logger   LoggerConfig   `yaml:"logger"`
	Workers  int            `yaml:"workers"`
}

type HTTPConfig struct {
	Port string `yaml:"port"`
}

type MySQLConfig struct {
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Database     string `yaml:"database"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	DB   int    `yaml:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type PaymentConfig struct {
	GatewayURL string        `yaml:"gateway_url"`
	APIKey     string        `yaml:"api_key"`
	Currency   string        `yaml:"currency"`
	SuccessURL string        `yaml:"success_url"`
	CancelURL  string        `yaml:"cancel_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type LoggerConfig struct {
	Mode     string `yaml:"mode"`
	Filename string `yaml:"filename"`
}

func (l LoggerConfig) FileEnable() bool {
	return l.Filename != ""
}

// Load reads an optional YAML file, applies environment overrides and fills
// defaults. An empty path skips the file.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	setString(&c.HTTP.Port, "PORT")
	setString(&c.MySQL.User, "MYSQL_USER")
	setString(&c.MySQL.Password, "MYSQL_PASSWORD")
	setString(&c.MySQL.Host, "MYSQL_HOST")
	setString(&c.MySQL.Port, "MYSQL_PORT")
	setString(&c.MySQL.Database, "MYSQL_DATABASE")
	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.User, "SMTP_USER")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "MAIL_FROM")
	setString(&c.Payment.GatewayURL, "PAYMENT_GATEWAY_URL")
	setString(&c.Payment.APIKey, "PAYMENT_GATEWAY_KEY")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Logger.Mode, "LOG_MODE")
	setString(&c.Logger.Filename, "LOG_FILE")
}

func (c *AppConfig) applyDefaults() {
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if c.MySQL.Port == "" {
		c.MySQL.Port = "3306"
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 100
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 20
	}
	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "marketplace.exchange"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "usd"
	}
	if c.Payment.Timeout == 0 {
		c.Payment.Timeout = 5 * time.Second
	}
	if c.Logger.Mode == "" {
		c.Logger.Mode = "development"
	}
	if c.Workers == 0 {
		c.Workers = 64
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
