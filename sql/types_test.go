package sql

import "testing"

func TestSchemaEqual(t *testing.T) {
	a := Schema{
		{Name: "x", Type: TypeInt, ID: 1},
		{Name: "y", Type: TypeString, ID: 2},
	}

	tests := []struct {
		name  string
		other Schema
		want  bool
	}{
		{
			name:  "identical",
			other: Schema{{Name: "x", Type: TypeInt, ID: 1}, {Name: "y", Type: TypeString, ID: 2}},
			want:  true,
		},
		{
			name:  "different order",
			other: Schema{{Name: "y", Type: TypeString, ID: 2}, {Name: "x", Type: TypeInt, ID: 1}},
			want:  false,
		},
		{
			name:  "different id",
			other: Schema{{Name: "x", Type: TypeInt, ID: 9}, {Name: "y", Type: TypeString, ID: 2}},
			want:  false,
		},
		{
			name:  "shorter",
			other: Schema{{Name: "x", Type: TypeInt, ID: 1}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.other); got != tt.want {
				t.Errorf("Equal(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestSchemaContains(t *testing.T) {
	s := Schema{{Name: "x", Type: TypeInt, ID: 1}, {Name: "y", Type: TypeString, ID: 2}}

	if !s.Contains(2) {
		t.Error("expected schema to contain id 2")
	}
	if s.Contains(3) {
		t.Error("did not expect schema to contain id 3")
	}
	if idx := s.IndexOf(2); idx != 1 {
		t.Errorf("IndexOf(2) = %d, want 1", idx)
	}
	if idx := s.IndexOf(7); idx != -1 {
		t.Errorf("IndexOf(7) = %d, want -1", idx)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		value  Value
		want   DataType
		wantOK bool
	}{
		{Int(7), TypeInt, true},
		{Float(1.5), TypeFloat, true},
		{String("a"), TypeString, true},
		{Bool(true), TypeBool, true},
		{Bytes([]byte{1}), TypeBytes, true},
		{struct{}{}, TypeInvalid, false},
	}

	for _, tt := range tests {
		got, ok := TypeOf(tt.value)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("TypeOf(%v) = (%v, %v), want (%v, %v)", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValuesEqualNoCoercion(t *testing.T) {
	if ValuesEqual(int64(1), float64(1)) {
		t.Error("int and float values must not compare equal")
	}
	if ValuesEqual(int64(1), "1") {
		t.Error("int and string values must not compare equal")
	}
	if !ValuesEqual([]byte("ab"), []byte("ab")) {
		t.Error("equal byte slices should compare equal")
	}
}
