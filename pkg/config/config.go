package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"false"`
}

type Jwt struct {
	Secret string `envconfig:"SECRET" required:"true"`
	// Claims issued by the identity layer.
	UserIDClaim string `envconfig:"USER_ID_CLAIM" default:"user_id"`
	RoleClaim   string `envconfig:"ROLE_CLAIM" default:"role"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"payminute:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS" default:"localhost:9092"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"payminute.events"`
	GroupID     string `envconfig:"GROUP_ID" default:"payminute"`
}

type EventBus struct {
	Driver     string `envconfig:"DRIVER" default:"memory"` // memory | redis | kafka
	RedisGroup string `envconfig:"REDIS_GROUP" default:"payminute"`
	Kafka      *Kafka `envconfig:"KAFKA"`
}

type Billing struct {
	MinPricePerMinute    int64           `envconfig:"MIN_PRICE_PER_MINUTE" default:"100"`
	MaxPricePerMinute    int64           `envconfig:"MAX_PRICE_PER_MINUTE" default:"100000"`
	DefaultPrice         int64           `envconfig:"DEFAULT_PRICE_PER_MINUTE" default:"199"`
	UseCommissionRecords bool            `envconfig:"USE_COMMISSION_RECORDS" default:"true"`
	DefaultCommission    decimal.Decimal `envconfig:"DEFAULT_COMMISSION" default:"70"`
}

type Withdrawal struct {
	MaxAmount       int64           `envconfig:"MAX_AMOUNT" default:"1000000"`
	DailyLimit      int64           `envconfig:"DAILY_LIMIT" default:"3"`
	AnticipationFee decimal.Decimal `envconfig:"ANTICIPATION_FEE" default:"0.05"`
	Timezone        string          `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
	RefundOnFailure bool            `envconfig:"REFUND_ON_FAILURE" default:"true"`
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (w *Withdrawal) Location() *time.Location {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type KYC struct {
	Validity time.Duration `envconfig:"VALIDITY" default:"8760h"`
}

type Recharge struct {
	MinAmount int64 `envconfig:"MIN_AMOUNT" default:"1000"`
	MaxAmount int64 `envconfig:"MAX_AMOUNT" default:"500000"`
}

type Idempotency struct {
	Driver string        `envconfig:"DRIVER" default:"memory"` // memory | redis
	TTL    time.Duration `envconfig:"TTL" default:"24h"`
}

//revive:disable
type Stripe struct {
	Env           string `envconfig:"ENV" default:"test"`
	ApiKey        string `envconfig:"API_KEY"`
	SigningSecret string `envconfig:"SIGNING_SECRET"`
	SuccessPath   string `envconfig:"SUCCESS_PATH" default:"http://localhost:3000/wallet/recharge/success"`
	CancelPath    string `envconfig:"CANCEL_PATH" default:"http://localhost:3000/wallet/recharge/cancel"`
}

type PixGateway struct {
	BaseURL       string        `envconfig:"BASE_URL"`
	ApiKey        string        `envconfig:"API_KEY"`
	WebhookSecret string        `envconfig:"WEBHOOK_SECRET"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

//revive:enable
type PaymentProviders struct {
	Stripe     *Stripe     `envconfig:"STRIPE"`
	PixGateway *PixGateway `envconfig:"PIX"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[payminute]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env              string            `envconfig:"APP_ENV" default:"development"`
	Server           *Server           `envconfig:"SERVER"`
	Log              *Log              `envconfig:"LOG"`
	DB               *DB               `envconfig:"DATABASE"`
	Auth             *Auth             `envconfig:"AUTH"`
	Redis            *Redis            `envconfig:"REDIS"`
	RateLimit        *RateLimit        `envconfig:"RATE_LIMIT"`
	EventBus         *EventBus         `envconfig:"EVENT_BUS"`
	Billing          *Billing          `envconfig:"BILLING"`
	Withdrawal       *Withdrawal       `envconfig:"WITHDRAWAL"`
	KYC              *KYC              `envconfig:"KYC"`
	Recharge         *Recharge         `envconfig:"RECHARGE"`
	Idempotency      *Idempotency      `envconfig:"IDEMPOTENCY"`
	PaymentProviders *PaymentProviders `envconfig:"PAYMENT_PROVIDER"`
}
