package config

import (
	"fmt"
	"os"
	"path/filepath"

	"ib-trader/internal/errors"
)

const configTemplate = `# ib-trader configuration

[connection]
# TWS (7497 paper, 7496 live) or IB Gateway (4002 paper, 4001 live)
host = "127.0.0.1"
port = 7497
client_id = 0
connect_timeout = "10s"
# Appended to the handshake version range, e.g. "+PACEAPI"
connect_options = ""
optional_capabilities = ""
# Reconnect with exponential backoff when the socket drops
reconnect = false
max_retries = 5

[api]
# Client version range offered in the handshake
min_version = 100
max_version = 201
# TWS disconnects clients sending more than 50 messages per second
messages_per_second = 45.0
# 1 live, 2 frozen, 3 delayed, 4 delayed frozen
market_data_type = 1
request_timeout = "30s"

[capture]
# Record every inbound frame for "trader decode"
enabled = false
path = "~/.config/ib-trader/capture/inbound.bin"

[storage]
# Persist historical bars, executions and commission reports
enabled = false
db_path = "~/.config/ib-trader/trader.db"

[logging]
# trace, debug, info, warn, error
level = "info"
console = true
file = false
file_path = "~/.config/ib-trader/logs/trader.log"
max_size = 100
max_backups = 7
max_age = 30
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, fmt.Sprintf("creating config directory: %v", err))
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, fmt.Sprintf("writing config template: %v", err))
	}
	return nil
}
