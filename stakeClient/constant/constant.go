package constant

import "os"

// <NodeDir>/                    (e.g., /home/user/.stakerd)
// └── config/
//	└── stakerd_config.json
// └── keyring-test/ | keyring-file/
// └── databases/
//	└── journal.db

const (
	NodeDir = ".stakerd"

	ConfigSubdir   = "config"
	ConfigFileName = "stakerd_config.json"

	DatabasesSubdir = "databases"
	JournalDBName   = "journal.db"

	// EnvPrefix is the prefix for environment overrides (STAKERD_KEYRING_PASSWORD, ...).
	EnvPrefix = "STAKERD"
)

var DefaultNodeHome = os.ExpandEnv("$HOME/") + NodeDir

// Message type URLs produced by the transaction builder.
const (
	MsgDelegateTypeURL       = "/cosmos.staking.v1beta1.MsgDelegate"
	MsgUndelegateTypeURL     = "/cosmos.staking.v1beta1.MsgUndelegate"
	MsgWithdrawRewardTypeURL = "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
)
