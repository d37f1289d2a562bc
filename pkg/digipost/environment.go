package digipost

import (
	"fmt"
	"net/url"
	"strings"
)

// Environment is a Digipost API deployment.
type Environment struct {
	Name string
	URL  string
}

// Known environments
var (
	Production     = Environment{Name: "Production", URL: "https://api.digipost.no/"}
	NorskHelsenett = Environment{Name: "NorskHelsenett", URL: "https://api.nhn.digipost.no/"}
	DifiTest       = Environment{Name: "DifiTest", URL: "https://api.difitest.digipost.no/"}
	Test           = Environment{Name: "Test", URL: "https://api.test.digipost.no/"}
	Qa             = Environment{Name: "Qa", URL: "https://api.qa.digipost.no/"}
	Local          = Environment{Name: "Local", URL: "http://localhost:8282/"}
)

// Environments lists the known environments.
func Environments() []Environment {
	return []Environment{Production, NorskHelsenett, DifiTest, Test, Qa, Local}
}

// EnvironmentByName looks up a known environment, ignoring case.
func EnvironmentByName(name string) (Environment, error) {
	for _, env := range Environments() {
		if strings.EqualFold(env.Name, name) {
			return env, nil
		}
	}
	return Environment{}, fmt.Errorf("unknown environment: %s", name)
}

// NewEnvironment creates a custom environment rooted at rawURL.
func NewEnvironment(name, rawURL string) (Environment, error) {
	env := Environment{Name: name, URL: rawURL}
	u, err := env.BaseURL()
	if err != nil {
		return Environment{}, err
	}
	env.URL = u.String()
	return env, nil
}

// BaseURL parses the environment URL. The path always ends in "/" so that
// relative references resolve below it.
func (e Environment) BaseURL() (*url.URL, error) {
	if e.URL == "" {
		return nil, fmt.Errorf("environment %q has no URL", e.Name)
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid environment URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid environment URL: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid environment URL: missing host")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

func (e Environment) String() string {
	return e.Name + " (" + e.URL + ")"
}
