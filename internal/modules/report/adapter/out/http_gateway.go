package out

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"vecino/internal/modules/report/domain"
	reportout "vecino/internal/modules/report/port/out"
	"vecino/internal/platform/httpapi"
)

type createRequest struct {
	Title             string  `json:"titulo"`
	Description       string  `json:"descripcion"`
	User              int     `json:"usuario"`
	Category          int     `json:"categoria"`
	Department        int     `json:"departamento"`
	NeighborhoodBoard int     `json:"junta_vecinal"`
	Latitude          float64 `json:"latitud"`
	Longitude         float64 `json:"longitud"`
	StreetName        string  `json:"nombre_calle"`
	StreetNumber      string  `json:"numero_calle,omitempty"`
	Location          string  `json:"ubicacion"`
}

type createResponse struct {
	ID int `json:"id"`
}

type HTTPReportGateway struct {
	client *httpapi.Client
}

func NewHTTPReportGateway(client *httpapi.Client) reportout.ReportGateway {
	return &HTTPReportGateway{client: client}
}

func bearer(principal domain.Principal) http.Header {
	return http.Header{"Authorization": {"Bearer " + principal.AccessToken}}
}

func (g *HTTPReportGateway) Create(ctx context.Context, principal domain.Principal, draft domain.Draft) (int, error) {
	body := createRequest{
		Title:             draft.Title,
		Description:       draft.Description,
		User:              principal.UserID,
		Category:          draft.CategoryID,
		Department:        draft.DepartmentID,
		NeighborhoodBoard: draft.NeighborhoodBoardID,
		Latitude:          draft.Coordinate.Latitude,
		Longitude:         draft.Coordinate.Longitude,
		StreetName:        draft.StreetName,
		StreetNumber:      draft.StreetNumber,
		Location:          draft.Address(),
	}
	out := createResponse{}
	if err := g.client.DoJSON(ctx, http.MethodPost, "/publicaciones/", nil, bearer(principal), body, &out); err != nil {
		return 0, err
	}
	if out.ID <= 0 {
		return 0, fmt.Errorf("create report: server returned no id")
	}
	return out.ID, nil
}

// UploadEvidence streams one file as multipart/form-data with the archivo,
// publicacion_id and extension fields.
func (g *HTTPReportGateway) UploadEvidence(ctx context.Context, principal domain.Principal, reportID int, upload reportout.Upload) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	written := make(chan struct{})
	go func() {
		defer close(written)
		pw.CloseWithError(writeEvidenceForm(mw, reportID, upload))
	}()
	_, err := g.client.Do(ctx, httpapi.Request{
		Method:      http.MethodPost,
		Path:        "/evidencias/",
		Header:      bearer(principal),
		Body:        pr,
		ContentType: mw.FormDataContentType(),
	})
	// unblock the writer if the request ended before reading everything,
	// and keep upload.Content owned by it until it stops reading
	_ = pr.Close()
	<-written
	return err
}

func writeEvidenceForm(mw *multipart.Writer, reportID int, upload reportout.Upload) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="archivo"; filename=%q`, upload.FileName))
	header.Set("Content-Type", upload.MimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create archivo part: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return fmt.Errorf("copy evidence: %w", err)
	}
	if err := mw.WriteField("publicacion_id", strconv.Itoa(reportID)); err != nil {
		return fmt.Errorf("write publicacion_id: %w", err)
	}
	if err := mw.WriteField("extension", upload.Extension); err != nil {
		return fmt.Errorf("write extension: %w", err)
	}
	return mw.Close()
}
