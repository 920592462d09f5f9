package config

// APIGateway definition api_gateway YAML structure
type APIGateway struct {
	Port        string          `mapstructure:"port"`
	AuthService ServiceConfig   `mapstructure:"auth"`
	RabbitMQ    RabbitMQConfig  `mapstructure:"rabbitmq"`
	VideoQueue  string          `mapstructure:"video_queue"`
	VideoStore  BlobStoreConfig `mapstructure:"video_store"`
	AudioStore  BlobStoreConfig `mapstructure:"audio_store"`
}

// AuthService definition auth_service YAML structure
type AuthService struct {
	Port      string `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
}

// TranscodeWorker definition transcode_worker YAML structure
type TranscodeWorker struct {
	RabbitMQ   RabbitMQConfig  `mapstructure:"rabbitmq"`
	VideoQueue string          `mapstructure:"video_queue"`
	MP3Queue   string          `mapstructure:"mp3_queue"`
	VideoStore BlobStoreConfig `mapstructure:"video_store"`
	AudioStore BlobStoreConfig `mapstructure:"audio_store"`
}

// NotifyWorker definition notify_worker YAML structure
type NotifyWorker struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	MP3Queue string         `mapstructure:"mp3_queue"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
}

// ServiceConfig definition service address
type ServiceConfig struct {
	IP   string `mapstructure:"service_ip"`
	Port string `mapstructure:"service_port"`
	Name string `mapstructure:"service_name"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	IP            string `mapstructure:"ip"`
	Port          string `mapstructure:"port"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// BlobStoreConfig definition blob store setting
// URI 以 mongodb:// 開頭時走 GridFS，否則視為 MinIO endpoint
type BlobStoreConfig struct {
	URI           string `mapstructure:"uri"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// SMTPConfig definition mail transport setting
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
