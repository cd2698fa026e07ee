package am

// Config represents the dxfcore configuration
type Config struct {
	Reader  ReaderConfig  `mapstructure:"reader" toml:"reader"`
	Writer  WriterConfig  `mapstructure:"writer" toml:"writer"`
	Handles HandlesConfig `mapstructure:"handles" toml:"handles"`
	Copy    CopyConfig    `mapstructure:"copy" toml:"copy"`
	Store   StoreConfig   `mapstructure:"store" toml:"store"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
}

// ReaderConfig configures the untrusted load path
type ReaderConfig struct {
	// Recover AcDbEntity group codes placed in the wrong subclass by
	// third-party producers
	RecoverGraphicAttributes bool `mapstructure:"recover_graphic_attributes" toml:"recover_graphic_attributes"`
	LogUnprocessedTags       bool `mapstructure:"log_unprocessed_tags" toml:"log_unprocessed_tags"`
	SkipComments             bool `mapstructure:"skip_comments" toml:"skip_comments"` // drop (999, ...) tags
	LegacyRepair             bool `mapstructure:"legacy_repair" toml:"legacy_repair"` // flatten subclass markers of R12 files
}

// WriterConfig configures tag export
type WriterConfig struct {
	DXFVersion    string `mapstructure:"dxf_version" toml:"dxf_version"` // AC1009 .. AC1032
	WriteHandles  bool   `mapstructure:"write_handles" toml:"write_handles"`
	ForceOptional bool   `mapstructure:"force_optional" toml:"force_optional"`
}

// HandlesConfig configures the handle generator
type HandlesConfig struct {
	Seed string `mapstructure:"seed" toml:"seed"` // uppercase hex, "0" is reserved
}

// CopyConfig holds the default copy settings of duplicated entities
type CopyConfig struct {
	ResetHandles                     bool `mapstructure:"reset_handles" toml:"reset_handles"`
	CopyExtensionDict                bool `mapstructure:"copy_extension_dict" toml:"copy_extension_dict"`
	CopyXData                        bool `mapstructure:"copy_xdata" toml:"copy_xdata"`
	CopyAppData                      bool `mapstructure:"copy_appdata" toml:"copy_appdata"`
	CopyReactors                     bool `mapstructure:"copy_reactors" toml:"copy_reactors"`
	SetSourceOfCopy                  bool `mapstructure:"set_source_of_copy" toml:"set_source_of_copy"`
	IgnoreCopyErrorsInLinkedEntities bool `mapstructure:"ignore_copy_errors_in_linked_entities" toml:"ignore_copy_errors_in_linked_entities"`
}

// StoreConfig configures the SQLite snapshot store
type StoreConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// LogConfig configures logger initialization of embedding tools
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity"` // 0 quiet .. 3 trace
}

// Default values shared by SetDefaults and the Get* fallbacks
const (
	DefaultDXFVersion = "AC1032"
	DefaultHandleSeed = "1"
	DefaultStorePath  = "dxfcore.db"
)

// File permission constants
const (
	DefaultDirPermissions  = 0750
	DefaultFilePermissions = 0644
)
