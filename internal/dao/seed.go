package dao

import (
	"context"
	"fmt"
	"strings"

	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/user_info/user_role_enum"
	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/random"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// SeedUser 初始用户，通常是预置的导师
type SeedUser struct {
	Uuid                     string `toml:"uuid"`
	Username                 string `toml:"username"`
	Password                 string `toml:"password"`
	FullName                 string `toml:"fullName"`
	Email                    string `toml:"email"`
	UserRole                 string `toml:"userRole"`
	IsAvailableForMentorship bool   `toml:"isAvailableForMentorship"`
	CollegeName              string `toml:"collegeName"`
	Course                   string `toml:"course"`
	BatchYear                int    `toml:"batchYear"`
}

type seedFile struct {
	Users []SeedUser `toml:"users"`
}

// LoadSeedFile 读取 [[users]] 列表
func LoadSeedFile(path string) ([]SeedUser, error) {
	var f seedFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return f.Users, nil
}

// SeedUsers 写入初始用户，用户名已存在的跳过，返回新建数量
func SeedUsers(ctx context.Context, users repository.UserRepository, seeds []SeedUser) (int, error) {
	created := 0
	for _, s := range seeds {
		if s.Username == "" || s.Password == "" {
			return created, fmt.Errorf("seed user needs username and password")
		}
		if _, err := users.FindByUsername(ctx, s.Username); err == nil {
			continue
		} else if !errorx.IsNotFound(err) {
			return created, err
		}

		user := &model.UserInfo{
			Uuid:                     s.Uuid,
			Username:                 s.Username,
			FullName:                 s.FullName,
			Email:                    s.Email,
			UserRole:                 normalizeRole(s.UserRole),
			IsAvailableForMentorship: s.IsAvailableForMentorship,
			CollegeName:              s.CollegeName,
			Course:                   s.Course,
			BatchYear:                s.BatchYear,
			RawPassword:              s.Password,
		}
		if user.Uuid == "" {
			user.Uuid = "U" + random.GetNowAndLenRandomString(11)
		}
		if err := users.Create(ctx, user); err != nil {
			// 多实例同时启动时可能被其他实例抢先写入
			if errorx.IsConflict(err) {
				continue
			}
			return created, err
		}
		created++
		zap.L().Info("导入初始用户", zap.String("username", user.Username), zap.String("uuid", user.Uuid))
	}
	return created, nil
}

// normalizeRole 角色名不区分大小写，未知值按学生处理
func normalizeRole(role string) string {
	for _, r := range []string{user_role_enum.Student, user_role_enum.Senior, user_role_enum.Alumni} {
		if strings.EqualFold(role, r) {
			return r
		}
	}
	return user_role_enum.Student
}
