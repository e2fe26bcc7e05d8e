package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		ua      string
		browser string
		os      string
		device  string
	}{
		{
			name:    "desktop firefox",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
			browser: "Firefox",
			os:      "Linux",
			device:  DeviceDesktop,
		},
		{
			name:    "android chrome",
			ua:      "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			browser: "Chrome",
			os:      "Android",
			device:  DeviceMobile,
		},
		{
			name:    "iphone safari",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			browser: "Safari",
			os:      "iOS",
			device:  DeviceMobile,
		},
		{
			name:    "empty agent",
			ua:      "",
			browser: Unknown,
			os:      Unknown,
			device:  DeviceDesktop,
		},
		{
			name:    "gibberish agent",
			ua:      "definitely-not-a-real-agent/0.0",
			browser: Unknown,
			os:      Unknown,
			device:  DeviceDesktop,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Classify(c.ua)
			assert.Equal(t, c.browser, got.Browser)
			assert.Equal(t, c.os, got.OS)
			assert.Equal(t, c.device, got.Device)
		})
	}
}
