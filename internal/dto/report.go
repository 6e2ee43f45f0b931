package dto

// ── 报告模块 DTO ──

// CreateReportRequest 报告上传请求（multipart 表单，文件字段为 arquivo）
type CreateReportRequest struct {
	Title string `form:"title" json:"title"`
}

// ReportResponse 报告响应
type ReportResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
	UploadedAt  string `json:"uploaded_at"`
}
