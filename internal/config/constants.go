package config

// Action input names as declared in action.yml.
const (
	InputGoListFile       = "goListFile"
	InputVersion          = "version"
	InputVerifyChecksum   = "verify-checksum"
	InputSigningKey       = "signing-key"
	InputSortReleases     = "sort-releases"
	InputConfigFile       = "config-file"
	InputWorkingDirectory = "working-directory"
	InputPlatform         = "platform"
	InputArch             = "arch"
	InputToken            = "token"
	InputReleaseBaseURL   = "release-base-url"
	InputAPIBaseURL       = "api-base-url"
)

// Defaults applied after the environment and the Lua file.
const (
	DefaultVersion    = "latest"
	DefaultOwner      = "Nivl"
	DefaultRepo       = "voorhees"
	DefaultConfigFile = "voorhees-action.lua"
)

// MaxArgCount bounds the args list from the Lua file.
const MaxArgCount = 64

// Lua schema field names and globals
const (
	luaGlobalVoorhees      = "voorhees"
	luaFieldGoListFile     = "go_list_file"
	luaFieldVersion        = "version"
	luaFieldVerifyChecksum = "verify_checksum"
	luaFieldSigningKey     = "signing_key"
	luaFieldSortReleases   = "sort_releases"
	luaFieldWorkDir        = "working_directory"
	luaFieldPlatform       = "platform"
	luaFieldArch           = "arch"
	luaFieldReleaseBaseURL = "release_base_url"
	luaFieldAPIBaseURL     = "api_base_url"
	luaFieldOwner          = "owner"
	luaFieldRepo           = "repo"
	luaFieldArgs           = "args"
)
