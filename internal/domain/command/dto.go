package command

import (
	"wesync/internal/domain/file"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
)

type FolderSyncRequest struct {
	ID  string `json:"id" doc:"Корневая папка пользователя"`
	Key string `json:"key" doc:"Ключ синхронизации, 0 для первой"`
}

type FolderSyncResponse struct {
	ID       string   `json:"id"`
	ChildIDs []string `json:"child_ids,omitempty"`
	NextKey  string   `json:"next_key"`
}

type FolderCreateRequest struct {
	UserChatWith string   `json:"user_chat_with,omitempty"`
	AnotherUsers []string `json:"another_users,omitempty" doc:"Участники новой группы"`
}

type FolderCreateResponse struct {
	FolderID     string `json:"folder_id"`
	UserChatWith string `json:"user_chat_with,omitempty"`
}

type FolderDeleteRequest struct {
	FolderID      string `json:"folder_id,omitempty"`
	UserChatWith  string `json:"user_chat_with,omitempty"`
	IsContentOnly bool   `json:"is_content_only,omitempty"`
}

type GetItemUnreadRequest struct {
	FolderIDs []string `json:"folder_ids,omitempty"`
}

type GetItemUnreadResponse struct {
	Unread []notice.Unread `json:"unread"`
}

// MetaSet набор операций и ответов плагинов
type MetaSet struct {
	Metas []*message.Meta `json:"metas"`
}

type SendFileResponse struct {
	ID       string `json:"id"`
	Complete bool   `json:"complete"`
	// Missing заполняется только когда файл почти собран
	Missing []int `json:"missing,omitempty"`
}

type GetFileRequest struct {
	ID      string `json:"id"`
	Indices []int  `json:"indices,omitempty"`
}

type GetFileResponse = file.File
