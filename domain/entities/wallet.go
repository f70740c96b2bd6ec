package entities

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// RoninPrefix is the display prefix of Ronin wallet addresses
const RoninPrefix = "ronin:"

// NormalizeWallet converts a "ronin:" address to its 0x hex form and
// validates it
func NormalizeWallet(wallet string) (string, error) {
	wallet = strings.TrimSpace(wallet)
	if strings.HasPrefix(strings.ToLower(wallet), RoninPrefix) {
		wallet = "0x" + wallet[len(RoninPrefix):]
	}
	if !common.IsHexAddress(wallet) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWallet, wallet)
	}
	return wallet, nil
}
