package dto

// ── 设备模块 DTO ──

// CreateEquipmentRequest 设备登记请求（multipart 表单，图片字段为 imagem）
type CreateEquipmentRequest struct {
	Name        string `form:"name"        json:"name"`
	Tombo       string `form:"tombo"       json:"tombo"`
	Quantity    int    `form:"quantity"    json:"quantity"`
	Model       string `form:"model"       json:"model"`
	Brand       string `form:"brand"       json:"brand"`
	Purpose     string `form:"purpose"     json:"purpose"`
	Status      string `form:"status"      json:"status"`
	Location    string `form:"location"    json:"location"`
	Description string `form:"description" json:"description"`
}

// EquipmentResponse 设备响应
type EquipmentResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Tombo          string  `json:"tombo"`
	Quantity       int     `json:"quantity"`
	Model          string  `json:"model"`
	Brand          string  `json:"brand"`
	Purpose        string  `json:"purpose"`
	Status         string  `json:"status"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
	ImagemFilename *string `json:"imagem_filename"`
	ImageURL       string  `json:"image_url,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
