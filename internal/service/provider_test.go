package service

import "testing"

func TestImageRequestSizeParsing(t *testing.T) {
	tests := []struct {
		size   string
		width  int
		height int
	}{
		{"1024x1024", 1024, 1024},
		{"512x768", 512, 768},
		{"", 1024, 1024},
		{"banana", 1024, 1024},
		{"0x512", 1024, 1024},
		{"-1x512", 1024, 1024},
		{"512x", 1024, 1024},
	}
	for _, tt := range tests {
		req := ImageRequest{Size: tt.size}
		if w := req.Width(); w != tt.width {
			t.Errorf("size %q: expected width %d, got %d", tt.size, tt.width, w)
		}
		if h := req.Height(); h != tt.height {
			t.Errorf("size %q: expected height %d, got %d", tt.size, tt.height, h)
		}
	}
}

func TestRegistryResolveIsExact(t *testing.T) {
	registry := NewProviderRegistry()
	registry.Register("dall-e-3", &fakeProvider{name: "OpenAI"})

	if _, err := registry.Resolve("dall-e-3"); err != nil {
		t.Fatalf("expected registered model to resolve: %v", err)
	}
	if _, err := registry.Resolve("DALL-E-3"); err == nil {
		t.Fatal("expected case-sensitive lookup to reject DALL-E-3")
	}
	if _, err := registry.Resolve("dall-e-2"); err == nil {
		t.Fatal("expected unknown model to be rejected")
	}
}

func TestInstructionsCoverKnownFamilies(t *testing.T) {
	for _, id := range []string{"nvidia-sdxl", "dall-e-3", "sd3", "something-unknown"} {
		instr := InstructionsFor(id)
		if instr.Title == "" || len(instr.Steps) == 0 {
			t.Fatalf("expected setup instructions for %s", id)
		}
	}
}
