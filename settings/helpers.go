package settings

import (
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/ordishs/gocore"
)

func getString(key, defaultValue string) string {
	value, found := gocore.Config().Get(key)
	if !found {
		return defaultValue
	}

	return value
}

func getUint32(key string, defaultValue uint32) (uint32, error) {
	value, found := gocore.Config().GetInt(key)
	if !found {
		return defaultValue, nil
	}

	return safeconversion.IntToUint32(value)
}

func getBool(key string, defaultValue bool) bool {
	return gocore.Config().GetBool(key, defaultValue)
}
