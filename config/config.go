package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Bao gồm kết nối database, thông số engine escalation và credentials của các kênh gửi.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`        // Địa chỉ server
	JwtSecret             string `env:"JWT_SECRET,required"`               // Bí mật JWT cho các route quản trị
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`   // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`           // Tên cơ sở dữ liệu HSSE
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`       // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`   // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"` // Thời gian window (giây)

	// Escalation Engine Configuration
	EscalationIntervalSeconds int    `env:"ESCALATION_INTERVAL_SECONDS" envDefault:"120"`    // Chu kỳ chạy evaluator (giây)
	EscalationMaxAttempts     int    `env:"ESCALATION_MAX_ATTEMPTS" envDefault:"3"`          // Số lần thử gửi tối đa cho một dedup key
	EscalationSendTimeout     int    `env:"ESCALATION_SEND_TIMEOUT_SECONDS" envDefault:"10"` // Timeout mỗi lần gọi channel sender (giây)
	EscalationWorkers         int    `env:"ESCALATION_WORKERS" envDefault:"4"`               // Số worker xử lý song song trong một chu kỳ
	DefaultLanguage           string `env:"DEFAULT_LANGUAGE" envDefault:"en"`                // Ngôn ngữ fallback khi template không có ngôn ngữ của người nhận
	InstanceID                string `env:"INSTANCE_ID"`                                     // Định danh instance (dùng cho distributed lock, mặc định = hostname)

	// Firebase Configuration (Push channel)
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`       // Firebase Project ID
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"` // Đường dẫn đến service account JSON
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	if cfg.InstanceID == "" {
		if hostname, err := os.Hostname(); err == nil {
			cfg.InstanceID = hostname
		} else {
			cfg.InstanceID = "hsse-instance"
		}
	}

	return &cfg
}
