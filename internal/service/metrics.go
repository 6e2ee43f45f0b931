package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 登记结果
const (
	outcomeCreated      = "created"
	outcomeDenied       = "denied"
	outcomeInvalid      = "invalid"
	outcomeStorageError = "storage_error"
	outcomePersistError = "persist_error"
)

var (
	// registrationsTotal 登记请求计数，按记录类型与结果区分
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltip_registrations_total",
			Help: "设备、机器、报告登记请求总数",
		},
		[]string{"kind", "outcome"},
	)

	// storedBytesTotal 成功写入上传目录的字节数
	storedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ltip_uploaded_bytes_total",
			Help: "写入上传目录的文件字节总数",
		},
	)

	// orphanedFiles 最近一次一致性检查发现的孤儿文件数
	orphanedFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ltip_orphaned_files",
			Help: "最近一次一致性检查发现的未被任何记录引用的文件数",
		},
	)

	// danglingReferences 最近一次一致性检查发现的悬空引用数
	danglingReferences = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ltip_dangling_references",
			Help: "最近一次一致性检查发现的指向缺失文件的记录数",
		},
	)
)
