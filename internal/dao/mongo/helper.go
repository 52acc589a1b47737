package mongo

import (
	"errors"

	"campus_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// wrapDBErrorf 包装驱动错误
//   - ErrNoDocuments -> CodeNotFound
//   - 唯一索引冲突 -> CodeConflict
//   - 其他错误 -> CodeDBError
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	code := errorx.CodeDBError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		code = errorx.CodeNotFound
	case mongo.IsDuplicateKeyError(err):
		code = errorx.CodeConflict
	}
	return errorx.Wrapf(err, code, format, args...)
}
