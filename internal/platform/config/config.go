package config

import (
	"os"
	"strconv"
	"strings"

	id "relaygate/pkg/domain"
)

// Config captures all environment-driven configuration so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers []string

	// LocalChain is the chain this unit lives on; inbound deliveries arrive
	// on its topic.
	LocalChain id.ChainID
	// RemoteChains are the destination chains whose topics are provisioned
	// at startup.
	RemoteChains []id.ChainID

	// RouterIdentity is the registered relay identity; only this identity may
	// invoke the receive callback.
	RouterIdentity string
	// SenderAddress is this unit's own address on the local chain, stamped
	// on every outbound message.
	SenderAddress id.Address

	NativeToken   id.Address
	NativeFunding uint64
	FeeBase       uint64
	FeePerByte    uint64
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:           envStr("RELAYGATE_ADDR", ":8080"),
		JWTSigningKey:  envStr("RELAYGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:    os.Getenv("RELAYGATE_POSTGRES_DSN"),
		RedisURL:       os.Getenv("RELAYGATE_REDIS_URL"),
		KafkaBrokers:   envList("RELAYGATE_KAFKA_BROKERS", "localhost:9092"),
		LocalChain:     id.ChainID(envUint("RELAYGATE_CHAIN_ID", 1)),
		RemoteChains:   envChains("RELAYGATE_REMOTE_CHAINS"),
		RouterIdentity: envStr("RELAYGATE_ROUTER_IDENTITY", "router-main"),
		SenderAddress:  id.Address(envStr("RELAYGATE_SENDER_ADDRESS", "relaygate-unit")),
		NativeToken:    id.Address(envStr("RELAYGATE_NATIVE_TOKEN", "native")),
		NativeFunding:  envUint("RELAYGATE_NATIVE_FUNDING", 1_000_000),
		FeeBase:        envUint("RELAYGATE_FEE_BASE", 100),
		FeePerByte:     envUint("RELAYGATE_FEE_PER_BYTE", 1),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envList(key, fallback string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envChains(key string) []id.ChainID {
	var chains []id.ChainID
	for _, p := range envList(key, "") {
		chain, err := id.ParseChainID(p)
		if err != nil {
			continue
		}
		chains = append(chains, chain)
	}
	return chains
}
