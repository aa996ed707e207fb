package communication

// ExchangeDeclarationConfig contains the parameters to declare a RabbitMQ exchange
type ExchangeDeclarationConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required,oneof=direct fanout topic headers"`
	Durable     bool   `yaml:"durable"`
	AutoDeleted bool   `yaml:"auto_deleted"`
	Internal    bool   `yaml:"internal"`
	NoWait      bool   `yaml:"no_wait"`
}

// PublisherConfig config use it for publishing traffic snapshots
// + URL: RabbitMQ URL, publishing is disabled when it's empty
// + Exchange: exchange in which snapshots are published
// + Mandatory: mandatory flag of each publishing
// + Persistent: if true messages survive a broker restart
type PublisherConfig struct {
	URL        string                    `yaml:"url" validate:"omitempty,url"`
	Exchange   ExchangeDeclarationConfig `yaml:"exchange"`
	Mandatory  bool                      `yaml:"mandatory"`
	Persistent bool                      `yaml:"persistent"`
}

// Enabled returns true if a RabbitMQ URL is configured
func (pc PublisherConfig) Enabled() bool {
	return pc.URL != ""
}
