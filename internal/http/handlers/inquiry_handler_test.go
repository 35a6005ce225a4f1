package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/atelierhaus/atelier-backend/internal/domain"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return er
}

func TestBeginInquiry(t *testing.T) {
	svc := &stubInquirySvc{inq: &domain.Inquiry{ID: "inq-1", Status: domain.StatusDraft}}
	r := newRig(svc, &stubPaymentSvc{}, &stubUploader{})

	w := doJSON(t, r, http.MethodPost, "/inquiries",
		`{"client_type":"business","first_name":" Maren ","last_name":" Holst ","email":"maren@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.lastBegin.FirstName != "Maren" || svc.lastBegin.LastName != "Holst" {
		t.Fatalf("names not trimmed: %+v", svc.lastBegin)
	}
	if svc.lastBegin.ClientType != domain.ClientBusiness {
		t.Fatalf("client_type = %q", svc.lastBegin.ClientType)
	}

	w = doJSON(t, r, http.MethodPost, "/inquiries", `{"first_name":"Maren","last_name":"Holst"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing email status = %d", w.Code)
	}
	if er := decodeError(t, w.Body.Bytes()); er.Code != ErrCodeBadRequest || er.Success {
		t.Fatalf("error envelope = %+v", er)
	}
}

func TestAddInquiryContext_RejectsNonUUID(t *testing.T) {
	r := newRig(&stubInquirySvc{}, &stubPaymentSvc{}, &stubUploader{})

	req := httptest.NewRequest(http.MethodPut, "/inquiries/not-a-uuid/context", strings.NewReader("address=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func multipartContext(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("address", "Kantstr. 12, Berlin"); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("services", "new-build"); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("document_urls", "https://cdn.test/pre-uploaded.pdf"); err != nil {
		t.Fatal(err)
	}
	if withFile {
		fw, err := mw.CreateFormFile("documents", "site-plan.pdf")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("%PDF-1.4 fake")); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAddInquiryContext_MultipartWithUpload(t *testing.T) {
	svc := &stubInquirySvc{inq: &domain.Inquiry{ID: "inq-1"}}
	up := &stubUploader{url: "https://cdn.test/inquiries/doc.pdf"}
	r := newRig(svc, &stubPaymentSvc{}, up)

	body, ctype := multipartContext(t, true)
	req := httptest.NewRequest(http.MethodPut, "/inquiries/"+uuid.NewString()+"/context", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(up.calls) != 1 || up.calls[0] != "site-plan.pdf" {
		t.Fatalf("upload calls = %v", up.calls)
	}
	if svc.lastContext.Address != "Kantstr. 12, Berlin" {
		t.Fatalf("address = %q", svc.lastContext.Address)
	}
	want := []string{"https://cdn.test/inquiries/doc.pdf", "https://cdn.test/pre-uploaded.pdf"}
	if len(svc.lastContext.Documents) != 2 ||
		svc.lastContext.Documents[0] != want[0] || svc.lastContext.Documents[1] != want[1] {
		t.Fatalf("documents = %v, want %v", svc.lastContext.Documents, want)
	}
}

func TestAddInquiryContext_UploadFailure(t *testing.T) {
	up := &stubUploader{err: errors.New("asset host down")}
	r := newRig(&stubInquirySvc{}, &stubPaymentSvc{}, up)

	body, ctype := multipartContext(t, true)
	req := httptest.NewRequest(http.MethodPut, "/inquiries/"+uuid.NewString()+"/context", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if er := decodeError(t, w.Body.Bytes()); er.Code != ErrCodeUploadFailed {
		t.Fatalf("code = %q", er.Code)
	}
}

func TestChooseInquiryPath_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrInquiryNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"locked", services.ErrPathLocked, http.StatusConflict, ErrCodePathLocked},
		{"already submitted", services.ErrAlreadySubmitted, http.StatusConflict, ErrCodeConflict},
		{"invalid path", services.ErrInvalidPath, http.StatusBadRequest, ErrCodeBadRequest},
		{"unexpected", errors.New("db gone"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(&stubInquirySvc{err: tc.err}, &stubPaymentSvc{}, &stubUploader{})
			w := doJSON(t, r, http.MethodPut, "/inquiries/inq-1/path", `{"path":"consult"}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if er := decodeError(t, w.Body.Bytes()); er.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", er.Code, tc.wantCode)
			}
		})
	}
}

func TestChooseInquiryPath_PassesPathThrough(t *testing.T) {
	svc := &stubInquirySvc{inq: &domain.Inquiry{ID: "inq-1"}}
	r := newRig(svc, &stubPaymentSvc{}, &stubUploader{})

	w := doJSON(t, r, http.MethodPut, "/inquiries/inq-1/path", `{"path":"general"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastPath != domain.PathGeneral {
		t.Fatalf("path = %q", svc.lastPath)
	}

	if w := doJSON(t, r, http.MethodPut, "/inquiries/inq-1/path", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing path status = %d", w.Code)
	}
}

func TestSubmitInquiry(t *testing.T) {
	svc := &stubInquirySvc{inq: &domain.Inquiry{ID: "inq-1", Status: domain.StatusSubmitted}}
	r := newRig(svc, &stubPaymentSvc{}, &stubUploader{})

	w := doJSON(t, r, http.MethodPost, "/inquiries/inq-1/submit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"submitted"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSetInquiryConsultation(t *testing.T) {
	svc := &stubInquirySvc{inq: &domain.Inquiry{ID: "inq-1"}}
	r := newRig(svc, &stubPaymentSvc{}, &stubUploader{})

	w := doJSON(t, r, http.MethodPut, "/inquiries/inq-1/consultation",
		`{"duration":"90","roadmap_report":true,"format":"video"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.lastConsult.Duration != domain.Duration90 || !svc.lastConsult.RoadmapReport || svc.lastConsult.Format != "video" {
		t.Fatalf("consult input = %+v", svc.lastConsult)
	}

	if w := doJSON(t, r, http.MethodPut, "/inquiries/inq-1/consultation", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing duration status = %d", w.Code)
	}
}

func TestGetInquiry_NotFound(t *testing.T) {
	r := newRig(&stubInquirySvc{err: services.ErrInquiryNotFound}, &stubPaymentSvc{}, &stubUploader{})
	w := doJSON(t, r, http.MethodGet, "/inquiries/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
