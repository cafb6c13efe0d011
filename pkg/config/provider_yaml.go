package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// YAML-tagged mirror structs; converted to the internal format on load.
type datasetYAML struct {
	Directory   string  `yaml:"directory"`
	Prefix      string  `yaml:"prefix,omitempty"`
	Extension   string  `yaml:"extension,omitempty"`
	ScaleFactor float64 `yaml:"scale_factor,omitempty"`
	ValidMin    float64 `yaml:"valid_min,omitempty"`
	ValidMax    float64 `yaml:"valid_max,omitempty"`
}

type studyYAML struct {
	ComparisonYear int            `yaml:"comparison_year,omitempty"`
	BaselineYear   int            `yaml:"baseline_year,omitempty"`
	DaysOfYear     []int          `yaml:"days_of_year,omitempty"`
	DayLabels      map[int]string `yaml:"day_labels,omitempty"`
	Bounds         *boundsYAML    `yaml:"bounds,omitempty"`
	Thresholds     *thresholdYAML `yaml:"thresholds,omitempty"`
}

type boundsYAML struct {
	West  float64 `yaml:"west"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	North float64 `yaml:"north"`
}

type thresholdYAML struct {
	Severe   float64 `yaml:"severe"`
	Moderate float64 `yaml:"moderate"`
	Mild     float64 `yaml:"mild"`
}

type restServerYAML struct {
	DefaultListenAddr string `yaml:"default_listen_addr,omitempty"`
	HTTPPort          int    `yaml:"http_port,omitempty"`
	TLSCertPath       string `yaml:"cert,omitempty"`
	TLSKeyPath        string `yaml:"key,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Dataset    datasetYAML     `yaml:"dataset"`
		Study      studyYAML       `yaml:"study,omitempty"`
		RESTServer *restServerYAML `yaml:"rest,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	if yamlConfig.Dataset.Directory == "" {
		return nil, fmt.Errorf("dataset.directory must be set")
	}

	// Convert to our internal format, filling defaults for anything the
	// file leaves out
	config := &ConfigData{
		Dataset: DatasetData{
			Directory:   yamlConfig.Dataset.Directory,
			Prefix:      yamlConfig.Dataset.Prefix,
			Extension:   yamlConfig.Dataset.Extension,
			ScaleFactor: yamlConfig.Dataset.ScaleFactor,
			ValidMin:    yamlConfig.Dataset.ValidMin,
			ValidMax:    yamlConfig.Dataset.ValidMax,
		},
		Study: StudyData{
			ComparisonYear: yamlConfig.Study.ComparisonYear,
			BaselineYear:   yamlConfig.Study.BaselineYear,
			DaysOfYear:     yamlConfig.Study.DaysOfYear,
			DayLabels:      yamlConfig.Study.DayLabels,
		},
	}

	if config.Dataset.Prefix == "" {
		config.Dataset.Prefix = DefaultPrefix
	}
	if config.Dataset.Extension == "" {
		config.Dataset.Extension = DefaultExtension
	}
	if config.Dataset.ScaleFactor == 0 {
		config.Dataset.ScaleFactor = DefaultScaleFactor
	}
	if config.Dataset.ValidMax == 0 {
		config.Dataset.ValidMin = DefaultValidMin
		config.Dataset.ValidMax = DefaultValidMax
	}

	if config.Study.ComparisonYear == 0 {
		config.Study.ComparisonYear = DefaultComparisonYear
	}
	if config.Study.BaselineYear == 0 {
		config.Study.BaselineYear = DefaultBaselineYear
	}
	if len(config.Study.DaysOfYear) == 0 {
		config.Study.DaysOfYear = append([]int(nil), DefaultDaysOfYear...)
	}
	if len(config.Study.DayLabels) == 0 {
		config.Study.DayLabels = make(map[int]string, len(DefaultDayLabels))
		for doy, label := range DefaultDayLabels {
			config.Study.DayLabels[doy] = label
		}
	}

	if yamlConfig.Study.Bounds != nil {
		config.Study.Bounds = BoundsData{
			West:  yamlConfig.Study.Bounds.West,
			South: yamlConfig.Study.Bounds.South,
			East:  yamlConfig.Study.Bounds.East,
			North: yamlConfig.Study.Bounds.North,
		}
	} else {
		config.Study.Bounds = DefaultBounds
	}

	if yamlConfig.Study.Thresholds != nil {
		config.Study.Thresholds = StressThresholds{
			Severe:   yamlConfig.Study.Thresholds.Severe,
			Moderate: yamlConfig.Study.Thresholds.Moderate,
			Mild:     yamlConfig.Study.Thresholds.Mild,
		}
	} else {
		config.Study.Thresholds = DefaultThresholds
	}

	if yamlConfig.RESTServer != nil {
		config.RESTServer = &RESTServerData{
			DefaultListenAddr: yamlConfig.RESTServer.DefaultListenAddr,
			HTTPPort:          yamlConfig.RESTServer.HTTPPort,
			TLSCertPath:       yamlConfig.RESTServer.TLSCertPath,
			TLSKeyPath:        yamlConfig.RESTServer.TLSKeyPath,
		}
	}

	y.config = config
	return config, nil
}

// GetDataset returns the dataset configuration section
func (y *YAMLProvider) GetDataset() (*DatasetData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Dataset, nil
}

// GetStudy returns the study configuration section
func (y *YAMLProvider) GetStudy() (*StudyData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Study, nil
}

// GetRESTServer returns the REST server configuration section
func (y *YAMLProvider) GetRESTServer() (*RESTServerData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return y.config.RESTServer, nil
}

// IsReadOnly returns true; YAML configurations are never written back
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}

func (y *YAMLProvider) ensureLoaded() error {
	if y.config != nil {
		return nil
	}
	_, err := y.LoadConfig()
	return err
}
