package config

import (
	"fmt"
	"os"
)

// Template is a commented starter config.
const Template = `# emulator name: pcsx2, rpcs3 or duckstation
target = "pcsx2"
# 0 uses the target's default slot
slot = 0
# connect to <target>.sock instead of <target>.sock.<slot>
auto = true
# auto | unix | tcp
transport = "auto"
tcp_host = "127.0.0.1"
runtime_dir = ""
# 0s blocks until the emulator answers
io_timeout = "0s"
log_level = "info"

[bridge]
addr = "127.0.0.1:9280"
cors_origins = ["http://localhost:3000"]
`

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}
