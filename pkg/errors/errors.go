// Package errors 定义跨模块共享的错误分类。
// 各业务模块的哨兵错误通过 fmt.Errorf("%w: ...") 包装这里的分类，
// Handler 层据此用 errors.Is 映射 HTTP 状态码。
package errors

import "errors"

var (
	// ErrValidation 必填字段缺失或取值非法，直接反馈给用户，不重试
	ErrValidation = errors.New("参数校验失败")

	// ErrAccessDenied 访问守卫拒绝
	ErrAccessDenied = errors.New("无权限访问")

	// ErrUnauthenticated 没有可解析的会话身份，属于 ErrAccessDenied 的一种
	ErrUnauthenticated = Wrap(ErrAccessDenied, "未认证")

	// ErrStorageIO 磁盘读写失败
	ErrStorageIO = errors.New("文件存储读写失败")

	// ErrNotFound 记录或存储引用不存在
	ErrNotFound = errors.New("资源不存在")
)

// Wrap 基于分类错误派生一个带描述的哨兵错误，errors.Is 对两者都成立
func Wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
