package calculator

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/models"
)

func TestShareAmount(t *testing.T) {
	tests := []struct {
		name       string
		sharePrice *uint256.Int
		shares     uint8
		want       string
		wantErr    bool
	}{
		{
			name:       "ten tokens with six decimals times five",
			sharePrice: uint256.NewInt(10_000000),
			shares:     5,
			want:       "50000000",
		},
		{
			name:       "zero shares is zero",
			sharePrice: uint256.NewInt(10_000000),
			shares:     0,
			want:       "0",
		},
		{
			name:       "overflow is rejected",
			sharePrice: new(uint256.Int).SetAllOne(),
			shares:     2,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShareAmount(tt.sharePrice, tt.shares)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ShareAmount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Errorf("expected ErrOverflow, got %v", err)
				}
				return
			}
			if got.Dec() != tt.want {
				t.Errorf("ShareAmount() = %s, want %s", got.Dec(), tt.want)
			}
		})
	}
}

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		feeBps  uint16
		wantFee uint64
		wantNet uint64
	}{
		{"one percent of 100 tokens", 100_000000, 100, 1_000000, 99_000000},
		{"five percent ceiling", 50_000000, 500, 2_500000, 47_500000},
		{"zero fee forwards everything", 20_000000, 0, 0, 20_000000},
		// 99 × 100 / 10000 = 0.99, truncated toward zero
		{"fee truncates toward zero", 99, 100, 0, 99},
		{"odd amount", 12_345679, 250, 308641, 12_037038},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := PlatformFee(uint256.NewInt(tt.amount), tt.feeBps)
			if err != nil {
				t.Fatalf("PlatformFee() error = %v", err)
			}
			if split.Fee.Uint64() != tt.wantFee {
				t.Errorf("fee = %d, want %d", split.Fee.Uint64(), tt.wantFee)
			}
			if split.Net.Uint64() != tt.wantNet {
				t.Errorf("net = %d, want %d", split.Net.Uint64(), tt.wantNet)
			}
			sum := new(uint256.Int).Add(split.Fee, split.Net)
			if !sum.Eq(split.Amount) {
				t.Errorf("fee + net = %s, want %s", sum.Dec(), split.Amount.Dec())
			}
		})
	}
}

func TestRefundPlan(t *testing.T) {
	alice := models.MustAddress("0x00000000000000000000000000000000000000a1")
	bob := models.MustAddress("0x00000000000000000000000000000000000000b2")
	carol := models.MustAddress("0x00000000000000000000000000000000000000c3")

	refunds, total, err := RefundPlan([]models.Contribution{
		{Payer: alice, Shares: 2},
		{Payer: bob, Shares: 0},
		{Payer: carol, Shares: 1},
	}, uint256.NewInt(10_000000))
	if err != nil {
		t.Fatalf("RefundPlan() error = %v", err)
	}

	if len(refunds) != 2 {
		t.Fatalf("expected 2 refunds, got %d", len(refunds))
	}
	if refunds[0].Payer != alice || refunds[0].Amount.Uint64() != 20_000000 {
		t.Errorf("first refund = %s %s, want %s 20000000", refunds[0].Payer, refunds[0].Amount.Dec(), alice)
	}
	if refunds[1].Payer != carol || refunds[1].Amount.Uint64() != 10_000000 {
		t.Errorf("second refund = %s %s, want %s 10000000", refunds[1].Payer, refunds[1].Amount.Dec(), carol)
	}
	if total.Uint64() != 30_000000 {
		t.Errorf("total = %s, want 30000000", total.Dec())
	}
}

func TestUnits(t *testing.T) {
	tests := []struct {
		human    string
		decimals uint8
		units    string
		wantErr  bool
	}{
		{"10", 6, "10000000", false},
		{"10.5", 6, "10500000", false},
		{"0.000001", 6, "1", false},
		{"1.5", 0, "", true},
		{"0.0000001", 6, "", true},
		{"-1", 6, "", true},
		{"ten", 6, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.human, func(t *testing.T) {
			got, err := ParseUnits(tt.human, tt.decimals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnits(%q) error = %v, wantErr %v", tt.human, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Dec() != tt.units {
				t.Errorf("ParseUnits(%q) = %s, want %s", tt.human, got.Dec(), tt.units)
			}
			if back := FormatUnits(got, tt.decimals); back != tt.human {
				t.Errorf("FormatUnits(%s) = %q, want %q", got.Dec(), back, tt.human)
			}
		})
	}
}
