package global

var (
	AppName          = "worldbackup"
	AppTitle         = "Minecraft World Backup"
	AppAuthor        = "JacksonTheMaster / SteamServerUI Dev Team"
	Version          = "dev"
	DefaultLogLevel  = "Info"
	DefaultLogFormat = "console"

	// PreferencesFile is resolved relative to the working directory unless configured otherwise.
	PreferencesFile = "backup_memory.json"
	ContainerName   = "Minecraft_Backups"
	BackupSuffix    = "_backup"

	ConfigName = "worldbackup"
	EnvPrefix  = "WORLDBACKUP"
)
