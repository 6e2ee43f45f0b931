package dto

// ── 机器模块 DTO ──

// CreateMachineRequest 机器登记请求（multipart 表单，图片字段为 imagem）
// 日期字段格式为 YYYY-MM-DD，可为空
type CreateMachineRequest struct {
	Name              string `form:"name"               json:"name"`
	Status            string `form:"status"             json:"status"`
	Type              string `form:"type"               json:"type"`
	Brand             string `form:"brand"              json:"brand"`
	Model             string `form:"model"              json:"model"`
	SerialNumber      string `form:"serial_number"      json:"serial_number"`
	OS                string `form:"os"                 json:"os"`
	InstalledSoftware string `form:"installed_software" json:"installed_software"`
	Licenses          string `form:"licenses"           json:"licenses"`
	LastCleaningDate  string `form:"last_cleaning_date" json:"last_cleaning_date"`
	LastFormatDate    string `form:"last_format_date"   json:"last_format_date"`
	Responsible       string `form:"responsible"        json:"responsible"`
}

// MachineResponse 机器响应
type MachineResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Status            string  `json:"status"`
	Type              string  `json:"type"`
	Brand             string  `json:"brand"`
	Model             string  `json:"model"`
	SerialNumber      *string `json:"serial_number"`
	OS                string  `json:"os"`
	InstalledSoftware string  `json:"installed_software"`
	Licenses          string  `json:"licenses"`
	LastCleaningDate  *string `json:"last_cleaning_date"`
	LastFormatDate    *string `json:"last_format_date"`
	Responsible       string  `json:"responsible"`
	ImagemFilename    *string `json:"imagem_filename"`
	ImageURL          string  `json:"image_url,omitempty"`
	CreatedAt         string  `json:"created_at"`
}
