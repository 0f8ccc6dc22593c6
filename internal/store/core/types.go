package core

import "strings"

// Movie es una película del catálogo.
type Movie struct {
	ID              int64
	Slug            string
	Title           string
	Year            int // 0 = desconocido
	Description     string
	DurationMinutes int // 0 = desconocido
	PosterURL       string
	BackdropURL     string
	Categories      []string // slugs de Category, en orden
	Director        string
	Country         string

	// HLSPath es el path del master playlist en la distribución,
	// ej: "/metropolis/master.m3u8". Vacío => no hay contenido reproducible.
	HLSPath string

	Featured bool
	// FeatureText acompaña al badge de destacado (ej: "Public Domain Day 2026").
	FeatureText string
}

// Playable indica si hay un HLS path para firmar.
func (m *Movie) Playable() bool { return m != nil && strings.TrimSpace(m.HLSPath) != "" }

// Clone devuelve una copia profunda.
func (m Movie) Clone() Movie {
	if m.Categories != nil {
		m.Categories = append([]string(nil), m.Categories...)
	}
	return m
}

// Validate chequea los campos obligatorios antes de persistir.
func (m *Movie) Validate() error {
	if strings.TrimSpace(m.Slug) == "" || strings.TrimSpace(m.Title) == "" {
		return ErrInvalid
	}
	if m.HLSPath != "" && !strings.HasPrefix(m.HLSPath, "/") {
		return ErrInvalid
	}
	return nil
}

// Category agrupa películas en el home.
type Category struct {
	ID         int64
	Slug       string
	Title      string
	OrderIndex int
	Visible    bool
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Slug) == "" || strings.TrimSpace(c.Title) == "" {
		return ErrInvalid
	}
	return nil
}
