package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDataset() (*DatasetData, error)
	GetStudy() (*StudyData, error)
	GetRESTServer() (*RESTServerData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset    DatasetData     `json:"dataset"`
	Study      StudyData       `json:"study"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

// DatasetData holds configuration for the on-disk SIF raster archive
type DatasetData struct {
	Directory   string  `json:"directory"`
	Prefix      string  `json:"prefix,omitempty"`
	Extension   string  `json:"extension,omitempty"`
	ScaleFactor float64 `json:"scale_factor,omitempty"`
	ValidMin    float64 `json:"valid_min,omitempty"`
	ValidMax    float64 `json:"valid_max,omitempty"`
}

// StudyData holds the year pair and observation dates under comparison
type StudyData struct {
	ComparisonYear int              `json:"comparison_year"`
	BaselineYear   int              `json:"baseline_year"`
	DaysOfYear     []int            `json:"days_of_year,omitempty"`
	DayLabels      map[int]string   `json:"day_labels,omitempty"`
	Bounds         BoundsData       `json:"bounds,omitempty"`
	Thresholds     StressThresholds `json:"thresholds,omitempty"`
}

// BoundsData holds the geographic extent of the study area in degrees
type BoundsData struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// StressThresholds holds the percent-anomaly cutoffs for stress classification.
// Each cutoff is a strict upper bound: anomalies below Severe classify as
// severe, below Moderate as moderate, below Mild as mild, otherwise normal.
type StressThresholds struct {
	Severe   float64 `json:"severe"`
	Moderate float64 `json:"moderate"`
	Mild     float64 `json:"mild"`
}

// RESTServerData holds the configuration for the dashboard REST server
type RESTServerData struct {
	DefaultListenAddr string `json:"default_listen_addr,omitempty"`
	HTTPPort          int    `json:"http_port,omitempty"`
	TLSCertPath       string `json:"tls_cert_path,omitempty"`
	TLSKeyPath        string `json:"tls_key_path,omitempty"`
}

// Defaults for the GOSIF Iowa drought study. Values not present in the
// configuration file fall back to these.
var (
	DefaultDaysOfYear = []int{177, 185, 193, 201, 209}

	DefaultDayLabels = map[int]string{
		177: "Jun 25",
		185: "Jul 3",
		193: "Jul 11",
		201: "Jul 19",
		209: "Jul 27",
	}

	DefaultBounds = BoundsData{West: -94.5, South: 41.5, East: -93.0, North: 42.5}

	DefaultThresholds = StressThresholds{Severe: -25, Moderate: -15, Mild: -5}
)

const (
	DefaultPrefix      = "GOSIF"
	DefaultExtension   = ".tif"
	DefaultScaleFactor = 0.0001
	DefaultValidMin    = 0.0
	DefaultValidMax    = 6.0

	DefaultComparisonYear = 2012
	DefaultBaselineYear   = 2023
)
