package warehouse

import (
	"net"
	"net/url"
	"strconv"

	"github.com/ekaya-inc/songplay-etl/pkg/config"
)

// Config contains warehouse connection options.
type Config struct {
	Type     string // registered adapter type, e.g. "redshift"
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-ca", "verify-full"
}

// DefaultSSLMode returns the default SSL mode.
func DefaultSSLMode() string {
	return "require"
}

// FromClusterConfig maps the cluster section of the application config.
func FromClusterConfig(c config.ClusterConfig) *Config {
	return &Config{
		Type:     c.Type,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		SSLMode:  c.SSLMode,
	}
}

// ConnectionString builds a PostgreSQL-protocol URL with every user-provided
// field escaped, so passwords containing @, /, # or ? survive URL parsing.
// Loopback hosts are rewritten to host.docker.internal inside a container.
func (c *Config) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(resolveHost(c.Host), strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}
