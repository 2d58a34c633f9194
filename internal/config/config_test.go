package config

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig("/tmp/cache", "/tmp/log")
	if c.FPS != DefaultFPS {
		t.Errorf("FPS = %v, want %v", c.FPS, DefaultFPS)
	}
	if c.FadeMs != DefaultFadeMs {
		t.Errorf("FadeMs = %v, want %v", c.FadeMs, DefaultFadeMs)
	}
	if c.CRF != DefaultCRF {
		t.Errorf("CRF = %v, want %v", c.CRF, DefaultCRF)
	}
	if !c.HWPreferred {
		t.Error("expected HWPreferred to default to true")
	}
	if c.CacheDir != "/tmp/cache" || c.LogDir != "/tmp/log" {
		t.Errorf("CacheDir/LogDir = %q/%q, want /tmp/cache//tmp/log", c.CacheDir, c.LogDir)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(*Config) {}, false},
		{"zero fps", func(c *Config) { c.FPS = 0 }, true},
		{"negative fps", func(c *Config) { c.FPS = -1 }, true},
		{"negative fade", func(c *Config) { c.FadeMs = -1 }, true},
		{"negative blur", func(c *Config) { c.BlurSigma = -1 }, true},
		{"crf too large", func(c *Config) { c.CRF = 64 }, true},
		{"width without height", func(c *Config) { c.Width = 100 }, true},
		{"height without width", func(c *Config) { c.Height = 100 }, true},
		{"width and height both set", func(c *Config) { c.Width, c.Height = 100, 50 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConfig("", "")
			tc.mutate(c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
