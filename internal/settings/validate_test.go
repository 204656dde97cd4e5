package settings

import "testing"

func TestNormalizeValue(t *testing.T) {
	cases := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: ContactEmailKey, value: " contato@energee.org.br ", want: "contato@energee.org.br"},
		{key: ContactEmailKey, value: "not-an-email", wantErr: true},
		{key: MauticAPIURLKey, value: "https://crm.example.com/", want: "https://crm.example.com"},
		{key: MauticAPIURLKey, value: "crm.example.com", wantErr: true},
		{key: WhatsAppNumberKey, value: "+55 (11) 99999-9999", want: "5511999999999"},
		{key: WhatsAppNumberKey, value: "1234", wantErr: true},
		{key: "custom_key", value: " anything ", want: "anything"},
		{key: ContactEmailKey, value: "   ", want: ""},
		{key: " ", value: "x", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeValue(tc.key, tc.value)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %s=%q, got %q", tc.key, tc.value, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("expected no error for %s=%q, got %v", tc.key, tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q for %s, got %q", tc.want, tc.key, got)
		}
	}
}

func TestDefinitionsAreCopied(t *testing.T) {
	defs := Definitions()
	defs[0].Key = "mutated"
	if _, ok := Lookup(CompanyNameKey); !ok {
		t.Fatalf("expected catalog to be unaffected by caller mutation")
	}
	def, ok := Lookup(MauticAPITokenKey)
	if !ok || !def.Secret {
		t.Fatalf("expected mautic token to be a secret setting, got %+v", def)
	}
}
