package models

// CryptoWallet maps a currency symbol to the one receiving address the store
// accepts payments on. Network is a display hint (e.g. "ERC-20").
type CryptoWallet struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Network string `json:"network,omitempty"`
}

// CryptoWallets is the fixed set of accepted currencies. Symbols are unique.
var CryptoWallets = []CryptoWallet{
	{
		Symbol:  "BTC",
		Name:    "Bitcoin",
		Address: "bc1q4utg2zy0523ud4e6x7w0fr9d90zcc9xdkhzjpx",
	},
	{
		Symbol:  "ETH",
		Name:    "Ethereum",
		Address: "0x1F5248EAF77C8a000D5d0347C623d75338a79bDd",
		Network: "ERC-20",
	},
	{
		Symbol:  "SOL",
		Name:    "Solana",
		Address: "8wycX69inEP8BQADRAqoHcs2JW1aqXJhTXzn4zpmHKAg",
	},
	{
		Symbol:  "XRP",
		Name:    "Ripple",
		Address: "r38p5WwwuVzzKhWtWPZ3EDiT8zf9z6HSYv",
	},
	{
		Symbol:  "USDT",
		Name:    "Tether USD",
		Address: "0x1F5248EAF77C8a000D5d0347C623d75338a79bDd",
		Network: "ERC-20",
	},
}

// WalletFor returns the wallet for the given symbol, or false if the symbol
// is not an accepted currency.
func WalletFor(symbol string) (CryptoWallet, bool) {
	for _, w := range CryptoWallets {
		if w.Symbol == symbol {
			return w, true
		}
	}
	return CryptoWallet{}, false
}
