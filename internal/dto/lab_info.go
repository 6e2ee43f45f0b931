package dto

// ── 实验室信息模块 DTO ──

// UpdateLabInfoRequest 更新实验室信息请求，未提供的字段保持不变
type UpdateLabInfoRequest struct {
	CoordinatorName  *string `json:"coordinator_name"  binding:"omitempty,min=1,max=200"`
	CoordinatorEmail *string `json:"coordinator_email" binding:"omitempty,email,max=255"`
	AssistantName    *string `json:"assistant_name"    binding:"omitempty,min=1,max=200"`
	AssistantEmail   *string `json:"assistant_email"   binding:"omitempty,email,max=255"`
}

// LabInfoResponse 实验室信息响应
type LabInfoResponse struct {
	CoordinatorName  string `json:"coordinator_name"`
	CoordinatorEmail string `json:"coordinator_email"`
	AssistantName    string `json:"assistant_name"`
	AssistantEmail   string `json:"assistant_email"`
	UpdatedAt        string `json:"updated_at"`
}
