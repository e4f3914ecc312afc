package config

// SiteConfig holds per-site overrides for a single host.
// Some font CDNs gate files behind specific headers; these overrides let a
// user match whatever the CDN expects without changing global settings.
type SiteConfig struct {
	// UserAgent replaces the default User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// OutputDir overrides the global download destination for this site.
	OutputDir string `yaml:"outputDir,omitempty"`
}

// File represents the structure of the .fontrake configuration file.
type File struct {
	// Sites maps hosts to their overrides.
	// Keys are bare hosts without a scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains overrides applied to every site unless the
	// site-specific entry replaces them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.OutputDir != "" {
			result.OutputDir = siteConfig.OutputDir
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
