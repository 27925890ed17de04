package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestDefaults() {
	conf := Default()
	s.NotNil(conf)

	s.Equal(30*time.Second, conf.StopTimeout)
	s.Equal("0.0.0.0:4000", conf.Gateway.ListenAddress)
	s.Equal(100, conf.Gateway.MaxPageSize)
	s.Equal(20, conf.Gateway.DefaultPageSize)
}

func (s *ConfigTestSuite) TestSweeperDefaults() {
	conf := Default()

	s.Equal(168*time.Hour, conf.Sweeper.RequestMaxAge)
	s.Equal(48*time.Hour, conf.Sweeper.TransferCreatedMaxAge)
	s.Equal(168*time.Hour, conf.Sweeper.TransferTransitMaxAge)
	s.Equal(3*time.Hour, conf.Sweeper.WatchdogInterval)
	s.Equal(100, conf.Sweeper.MaxOffersPerRun)
}

func (s *ConfigTestSuite) TestNotifierDefaults() {
	conf := Default()

	s.Equal(100, conf.Notifier.QueueSize)
	s.Equal(20, conf.Notifier.BatchSize)
	s.Equal("hemolink:events", conf.Notifier.RedisChannelName)
	s.Empty(conf.Notifier.WebhookUrl)
}

func (s *ConfigTestSuite) TestEnvOverride() {
	s.T().Setenv("HEMOLINK_GATEWAY_MAX_PAGE_SIZE", "55")

	conf, err := Load("")
	s.NoError(err)
	s.Equal(55, conf.Gateway.MaxPageSize)
}
