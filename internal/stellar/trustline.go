package stellar

// TrustlineAsset maps a token symbol to its on-chain contract and precision.
type TrustlineAsset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Contract string `json:"contract"` // C... contract address
	Issuer   string `json:"issuer,omitempty"`
	Decimals int    `json:"decimals"`
}

// Registry is the static trustline lookup table. Entries are fixed at build
// time; both lookups are pure.
type Registry struct {
	bySymbol   map[string]TrustlineAsset
	byContract map[string]TrustlineAsset
	ordered    []TrustlineAsset
}

func NewRegistry(assets []TrustlineAsset) *Registry {
	r := &Registry{
		bySymbol:   make(map[string]TrustlineAsset, len(assets)),
		byContract: make(map[string]TrustlineAsset, len(assets)),
		ordered:    assets,
	}
	for _, a := range assets {
		r.bySymbol[a.Symbol] = a
		r.byContract[a.Contract] = a
	}
	return r
}

func (r *Registry) BySymbol(symbol string) (TrustlineAsset, bool) {
	a, ok := r.bySymbol[symbol]
	return a, ok
}

func (r *Registry) ByContract(contract string) (TrustlineAsset, bool) {
	a, ok := r.byContract[contract]
	return a, ok
}

// Assets returns the registry contents in declaration order.
func (r *Registry) Assets() []TrustlineAsset {
	return r.ordered
}

// DefaultAssets are the stablecoins (plus native XLM) the marketplace trades.
// Contract ids are the mainnet Soroban token contracts.
func DefaultAssets() []TrustlineAsset {
	return []TrustlineAsset{
		{
			Symbol:   "USDC",
			Name:     "USD Coin",
			Contract: "CCW67TSZV3SSS2HXMBQ5JFGCKJNXKZM7UQUWUZPUTHXSTZLEO7SJMI75",
			Issuer:   "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN",
			Decimals: 7,
		},
		{
			Symbol:   "EURC",
			Name:     "Euro Coin",
			Contract: "CDTKPWPLOURQA2SGTKTUQOWRCBZEORB4BWBOMJ3D3ZTQQSGE5F6JBQLV",
			Issuer:   "GDHU6WRG4IEQXM5NZ4BMPKOXHW76MZM4Y2IEMFDVXBSDP6SJY4ITNPP2",
			Decimals: 7,
		},
		{
			Symbol:   "XLM",
			Name:     "Stellar Lumens",
			Contract: "CAS3J7GYLGXMF6TDJBBYYSE3HQ6BBSMLNUQ34T6TZMYMW2EVH34XOWMA",
			Decimals: 7,
		},
	}
}
