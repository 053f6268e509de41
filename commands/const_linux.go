package commands

const (
	_etc = "/usr/local/etc/openproject"
	_var = "/usr/local/var/openproject"

	DEFAULT_CONFIG      = _etc + "/openproject-app-sheets.toml"
	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/sheets/.google/credentials.json"
)
