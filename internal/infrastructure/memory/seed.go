package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// Seed catálogo inicial para el driver en memoria.
type Seed struct {
	Products []struct {
		ID   string `json:"id"`
		SKU  string `json:"sku"`
		Name string `json:"name"`
	} `json:"products"`
	Locations []struct {
		ID          string `json:"id"`
		WarehouseID string `json:"warehouse_id"`
		Code        string `json:"code"`
	} `json:"locations"`
	Stock []struct {
		ProductID  string `json:"product_id"`
		LocationID string `json:"location_id"`
		Quantity   int64  `json:"quantity"`
	} `json:"stock"`
}

// LoadSeed lee un Seed JSON y lo aplica al store.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decodificar semilla: %w", err)
	}
	for _, p := range seed.Products {
		if p.ID == "" || p.SKU == "" {
			return fmt.Errorf("semilla: producto sin id o sku")
		}
		s.AddProduct(entity.Product{ID: p.ID, SKU: p.SKU, Name: p.Name})
	}
	for _, l := range seed.Locations {
		if l.ID == "" || l.WarehouseID == "" {
			return fmt.Errorf("semilla: ubicación sin id o bodega")
		}
		s.AddLocation(entity.Location{ID: l.ID, WarehouseID: l.WarehouseID, Code: l.Code})
	}
	for _, st := range seed.Stock {
		if st.Quantity < 0 {
			return fmt.Errorf("semilla: cantidad negativa para %s en %s", st.ProductID, st.LocationID)
		}
		if !s.known(st.ProductID, st.LocationID) {
			return fmt.Errorf("%w: semilla: stock de %s en %s sin producto o ubicación", domain.ErrNotFound, st.ProductID, st.LocationID)
		}
		s.SetStock(st.ProductID, st.LocationID, st.Quantity)
	}
	return nil
}

// known indica si el producto y la ubicación existen en el catálogo.
func (s *Store) known(productID, locationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, okP := s.products[productID]
	_, okL := s.locations[locationID]
	return okP && okL
}

// LoadSeedFile abre path y llama a LoadSeed.
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir semilla: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}
