package model

// Metadata describes a listed company.
type Metadata struct {
	CompanyName  string
	Sector       string
	KMICompliant bool
}

// MetadataMap maps canonical symbols to company metadata.
type MetadataMap map[string]Metadata

// Lookup returns the metadata for a symbol, falling back to defaults
// (company name = symbol, sector "N/A", not KMI compliant) when absent.
func (m MetadataMap) Lookup(symbol string) Metadata {
	key := CanonicalSymbol(symbol)
	if md, ok := m[key]; ok {
		if md.CompanyName == "" {
			md.CompanyName = key
		}
		if md.Sector == "" {
			md.Sector = "N/A"
		}
		return md
	}
	return Metadata{CompanyName: key, Sector: "N/A"}
}

// Has reports whether the symbol is present in the map.
func (m MetadataMap) Has(symbol string) bool {
	_, ok := m[CanonicalSymbol(symbol)]
	return ok
}
