package inventory

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSKU recorta espacios y normaliza a NFC. Se aplica igual al catálogo y a los
// pedidos para que SKUs equivalentes coincidan.
func NormalizeSKU(sku string) string {
	return norm.NFC.String(strings.TrimSpace(sku))
}
