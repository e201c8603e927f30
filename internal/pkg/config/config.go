package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBUsername string `yaml:"db_username"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`
	DisableTLS bool   `yaml:"disable_tls"`

	ReplicaDSN    string `yaml:"replica_dsn"`
	ReplicaSiteCd string `yaml:"replica_site_cd"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	SnapshotPath string `yaml:"snapshot_path"`
	SiteTimezone string `yaml:"site_timezone"`

	ServerPort string `yaml:"server_port"`
	BaseUrl    string `yaml:"base_url"`
	Debug      bool   `yaml:"debug"`
}

func NewConfig() (*Config, error) {
	var c Config

	yamlFile, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		return nil, err
	}

	if c.DBUsername == "" || c.DBPassword == "" || c.DBHost == "" || c.DBName == "" {
		return nil, errors.New("missing required database configuration")
	}
	if c.ReplicaDSN == "" {
		return nil, errors.New("missing replica_dsn configuration")
	}

	if c.ReplicaSiteCd == "" {
		c.ReplicaSiteCd = "10"
	}
	if c.SiteTimezone == "" {
		c.SiteTimezone = "Asia/Seoul"
	}
	if c.ServerPort == "" {
		c.ServerPort = ":8080"
	}

	return &c, nil
}
