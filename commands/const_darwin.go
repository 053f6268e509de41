package commands

const (
	_etc = "/usr/local/etc/com.github.xinotrix"
	_var = "/usr/local/var/com.github.xinotrix"

	DEFAULT_CONFIG      = _etc + "/openproject-app-sheets.toml"
	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/sheets/.google/credentials.json"
)
