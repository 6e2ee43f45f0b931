package dto

// ── 一致性检查 DTO ──

// DanglingReferenceResponse 指向不存在文件的记录
type DanglingReferenceResponse struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Ref      string `json:"ref"`
}

// ConsistencyReportResponse 文件与记录一致性报告
type ConsistencyReportResponse struct {
	OrphanedFiles       []string                    `json:"orphaned_files"`
	DanglingReferences  []DanglingReferenceResponse `json:"dangling_references"`
	StoredFileCount     int                         `json:"stored_file_count"`
	ReferencedFileCount int                         `json:"referenced_file_count"`
	CheckedAt           string                      `json:"checked_at"`
}
