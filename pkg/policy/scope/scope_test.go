package scope

import "testing"

func TestType_Specificity(t *testing.T) {
	if !(Org.Specificity() < Branch.Specificity() && Branch.Specificity() < User.Specificity()) {
		t.Errorf("Specificity order = %d, %d, %d, want increasing", Org.Specificity(), Branch.Specificity(), User.Specificity())
	}
	if Type("TEAM").Specificity() != -1 {
		t.Errorf("unknown type Specificity() = %d, want -1", Type("TEAM").Specificity())
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"org", Org, false},
		{"BRANCH", Branch, false},
		{" User ", User, false},
		{"team", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		input   string
		want    Descriptor
		wantErr bool
	}{
		{"org:acme", Descriptor{Type: Org, ID: "acme"}, false},
		{"branch:north-1", Descriptor{Type: Branch, ID: "north-1"}, false},
		{"user:u:42", Descriptor{Type: User, ID: "u:42"}, false},
		{"org:", Descriptor{}, true},
		{"acme", Descriptor{}, true},
		{"team:x", Descriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDescriptor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDescriptor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDescriptor(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDescriptor_String(t *testing.T) {
	if got := New(Branch, "north").String(); got != "BRANCH:north" {
		t.Errorf("String() = %q, want %q", got, "BRANCH:north")
	}
	if got := User.Dir(); got != "user" {
		t.Errorf("Dir() = %q, want %q", got, "user")
	}
}
