package storage

import "testing"

func TestValidateLogo(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		ext         string
		wantErr     bool
	}{
		{name: "png", contentType: "image/png", size: 10, ext: ".png"},
		{name: "jpeg with params", contentType: "Image/JPEG; charset=binary", size: 10, ext: ".jpg"},
		{name: "svg refused", contentType: "image/svg+xml", size: 10, wantErr: true},
		{name: "empty", contentType: "image/png", size: 0, wantErr: true},
		{name: "too large", contentType: "image/png", size: 101, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateLogo(tt.contentType, tt.size, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ext != tt.ext {
				t.Fatalf("ext = %q, want %q", ext, tt.ext)
			}
		})
	}
}
