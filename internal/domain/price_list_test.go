package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jun1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		list PriceList
		want PriceListStatus
	}{
		{"Ativa sem data final", PriceList{Status: PriceListActive}, PriceListActive},
		{"Ativa dentro da janela", PriceList{Status: PriceListActive, EndDate: &jun1}, PriceListActive},
		{"Ativa com data final vencida", PriceList{Status: PriceListActive, EndDate: &jan1}, PriceListExpired},
		{"Padrão com data final vencida", PriceList{Status: PriceListActive, IsDefault: true, EndDate: &jan1}, PriceListActive},
		{"Inativa continua inativa", PriceList{Status: PriceListInactive, EndDate: &jan1}, PriceListInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.list.EffectiveStatus(jun1))
		})
	}
}
