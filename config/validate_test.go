package config

import (
	"strings"
	"testing"
	"time"

	"duckdnsd/common"
)

func validConfig() Config {
	c := Config{
		Provider: ProviderConfig{Token: "a7c4d0ad-114e-40ef-ba1d-d217904a50f2"},
		Domain:   []string{"myhome"},
	}
	c.Normalize()
	return c
}

func TestNormalizeDefaults(t *testing.T) {
	c := validConfig()

	if time.Duration(c.Service.Interval) != DefaultInterval {
		t.Fatalf("expected default interval, got %s", c.Service.Interval)
	}
	if time.Duration(c.Service.MaxBackoff) != DefaultMaxBackoff {
		t.Fatalf("expected default max backoff, got %s", c.Service.MaxBackoff)
	}
	if c.Provider.Endpoint != DefaultEndpoint {
		t.Fatalf("expected default endpoint, got %q", c.Provider.Endpoint)
	}
	if c.Provider.Type != "duckdns" {
		t.Fatalf("expected duckdns provider, got %q", c.Provider.Type)
	}
	if c.Provider.Verbose == nil || !*c.Provider.Verbose {
		t.Fatal("expected verbose to default on")
	}
	if len(c.Lookup) != len(DefaultLookup) {
		t.Fatalf("expected default lookup list, got %d entries", len(c.Lookup))
	}

	if err := c.Validate(); err != nil {
		t.Fatalf("valid config rejected: %s", err)
	}
}

func TestValidateMissingToken(t *testing.T) {
	c := validConfig()
	c.Provider.Token = ""
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestValidateTokenWhitespace(t *testing.T) {
	c := validConfig()
	c.Provider.Token = "bad token"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for token with whitespace")
	}
}

func TestValidateDomains(t *testing.T) {
	c := validConfig()
	c.Domain = nil
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for empty domain list")
	}

	c = validConfig()
	c.Domain = []string{"my_home"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for invalid label")
	}

	c = validConfig()
	c.Domain = []string{"-myhome"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for leading hyphen")
	}

	c = validConfig()
	c.Domain = []string{"myhome", "myhome"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for duplicate domain")
	}
}

func TestValidateBackoffBelowInterval(t *testing.T) {
	c := validConfig()
	c.Service.Interval = common.Duration(time.Hour)
	c.Service.MaxBackoff = common.Duration(time.Minute)
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for max_backoff below interval")
	}
}

func TestValidateEndpoint(t *testing.T) {
	c := validConfig()
	c.Provider.Endpoint = "ftp://example.com/update"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for non-http endpoint")
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	c := validConfig()
	c.Provider.Token = ""
	c.Domain = []string{"bad_label"}

	err := c.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	if !strings.Contains(err.Error(), "token") || !strings.Contains(err.Error(), "bad_label") {
		t.Fatalf("expected both problems reported, got: %s", err)
	}
}
