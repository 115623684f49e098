package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tenantID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	docID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	issued := time.Date(2023, 11, 30, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		number string
		ext    string
		want   string
	}{
		{"plain number", "INV-001", "pdf", "11111111-1111-1111-1111-111111111111/2023/11/22222222-2222-2222-2222-222222222222-INV-001.pdf"},
		{"extension normalized", "Q_7", ".HTML", "11111111-1111-1111-1111-111111111111/2023/11/22222222-2222-2222-2222-222222222222-Q_7.html"},
		{"separators replaced", "2023/11 #4", "pdf", "11111111-1111-1111-1111-111111111111/2023/11/22222222-2222-2222-2222-222222222222-2023_11_4.pdf"},
		{"empty number", "  ", "pdf", "11111111-1111-1111-1111-111111111111/2023/11/22222222-2222-2222-2222-222222222222.pdf"},
		{"dots cannot climb", "../../etc", "pdf", "11111111-1111-1111-1111-111111111111/2023/11/22222222-2222-2222-2222-222222222222-______etc.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObjectKey(&StoreRequest{
				TenantID:   tenantID,
				DocumentID: docID,
				Number:     tt.number,
				Extension:  tt.ext,
				IssuedAt:   issued,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreRequest_Validate(t *testing.T) {
	valid := func() *StoreRequest {
		return &StoreRequest{
			TenantID:   uuid.New(),
			DocumentID: uuid.New(),
			Extension:  "pdf",
			Data:       []byte("x"),
		}
	}

	assert.NoError(t, valid().Validate())

	var nilReq *StoreRequest
	assert.Error(t, nilReq.Validate())

	r := valid()
	r.TenantID = uuid.Nil
	assert.ErrorContains(t, r.Validate(), "tenant")

	r = valid()
	r.DocumentID = uuid.Nil
	assert.ErrorContains(t, r.Validate(), "document ID")

	r = valid()
	r.Extension = ""
	assert.ErrorContains(t, r.Validate(), "extension")

	r = valid()
	r.Data = nil
	assert.ErrorContains(t, r.Validate(), "empty")
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../x.pdf", "a/../../x.pdf", `a\..\x.pdf`} {
		_, err := cleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	got, err := cleanKey("t/2024/./01/x.pdf")
	assert.NoError(t, err)
	assert.Equal(t, "t/2024/01/x.pdf", got)
}
