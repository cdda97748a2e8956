package asset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownChain = errors.New("unknown chain")
	ErrUnknownAsset = errors.New("unknown asset")
)

// ChainInfo describes a chain known to the catalog.
type ChainInfo struct {
	ID           ChainID
	Name         string
	Family       Family
	GasDecimals  int32
	GasSymbol    string
	CanonicalKey Project
}

// Catalog is the static set of chains and assets a swap may reference.
type Catalog struct {
	chains map[ChainID]ChainInfo
	assets map[ChainID]map[Project]ChainAsset
}

type catalogFile struct {
	Chains []chainEntry `yaml:"chains"`
}

type chainEntry struct {
	ID          uint16       `yaml:"id"`
	Name        string       `yaml:"name"`
	Family      string       `yaml:"family"`
	GasDecimals int32        `yaml:"gas_decimals"`
	GasSymbol   string       `yaml:"gas_symbol"`
	Canonical   string       `yaml:"canonical"`
	Tokens      []tokenEntry `yaml:"tokens"`
}

type tokenEntry struct {
	Project     string  `yaml:"project"`
	Address     string  `yaml:"address"`
	Decimals    int32   `yaml:"decimals"`
	TokenNumber *uint16 `yaml:"token_number"`
	PoolIndex   *int    `yaml:"pool_index"`
}

// LoadCatalog reads a catalog from a yaml file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog builds a catalog from yaml content.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse asset catalog: %w", err)
	}

	c := &Catalog{
		chains: make(map[ChainID]ChainInfo, len(file.Chains)),
		assets: make(map[ChainID]map[Project]ChainAsset, len(file.Chains)),
	}
	for _, ch := range file.Chains {
		if ch.ID == 0 {
			return nil, fmt.Errorf("chain %q: id is required", ch.Name)
		}
		id := ChainID(ch.ID)
		if _, dup := c.chains[id]; dup {
			return nil, fmt.Errorf("chain %d declared twice", ch.ID)
		}
		family := Family(strings.ToLower(ch.Family))
		if !family.Valid() {
			return nil, fmt.Errorf("chain %d: unknown family %q", ch.ID, ch.Family)
		}

		info := ChainInfo{
			ID:           id,
			Name:         ch.Name,
			Family:       family,
			GasDecimals:  ch.GasDecimals,
			GasSymbol:    ch.GasSymbol,
			CanonicalKey: Project(strings.ToLower(ch.Canonical)),
		}
		if info.Name == "" {
			info.Name = id.String()
		}

		tokens := make(map[Project]ChainAsset, len(ch.Tokens))
		for _, tk := range ch.Tokens {
			project := Project(strings.ToLower(tk.Project))
			if project == "" || tk.Address == "" {
				return nil, fmt.Errorf("chain %d: token project and address are required", ch.ID)
			}
			tokens[project] = ChainAsset{
				Chain:       id,
				Project:     project,
				Address:     tk.Address,
				Decimals:    tk.Decimals,
				TokenNumber: tk.TokenNumber,
				PoolIndex:   tk.PoolIndex,
				Canonical:   project == info.CanonicalKey,
			}
		}
		if _, ok := tokens[info.CanonicalKey]; !ok {
			return nil, fmt.Errorf("chain %d: canonical asset %q not in token list", ch.ID, ch.Canonical)
		}

		c.chains[id] = info
		c.assets[id] = tokens
	}
	return c, nil
}

// Chain returns chain metadata.
func (c *Catalog) Chain(id ChainID) (ChainInfo, error) {
	info, ok := c.chains[id]
	if !ok {
		return ChainInfo{}, fmt.Errorf("%w: %s", ErrUnknownChain, id)
	}
	return info, nil
}

// Chains lists known chains ordered by id.
func (c *Catalog) Chains() []ChainInfo {
	out := make([]ChainInfo, 0, len(c.chains))
	for _, info := range c.chains {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Asset looks up a project's deployment on a chain.
func (c *Catalog) Asset(chain ChainID, project Project) (ChainAsset, error) {
	tokens, ok := c.assets[chain]
	if !ok {
		return ChainAsset{}, fmt.Errorf("%w: %s", ErrUnknownChain, chain)
	}
	a, ok := tokens[Project(strings.ToLower(string(project)))]
	if !ok {
		return ChainAsset{}, fmt.Errorf("%w: %s on %s", ErrUnknownAsset, project, chain)
	}
	return a, nil
}

// Canonical returns the chain's canonical bridged asset.
func (c *Catalog) Canonical(chain ChainID) (ChainAsset, error) {
	info, err := c.Chain(chain)
	if err != nil {
		return ChainAsset{}, err
	}
	return c.Asset(chain, info.CanonicalKey)
}

// Pooled returns the chain's assets that have a liquidity pool position,
// ordered by that position.
func (c *Catalog) Pooled(chain ChainID) []ChainAsset {
	var out []ChainAsset
	for _, a := range c.assets[chain] {
		if a.PoolIndex != nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].PoolIndex < *out[j].PoolIndex })
	return out
}
