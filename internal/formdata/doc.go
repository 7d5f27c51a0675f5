// Package formdata builds multipart/form-data bodies that can be streamed.
//
// An Encoder collects named fields and file attachments as an ordered list of
// parts. Parts may be in-memory buffers, readers, open files or pull callbacks,
// so large attachments never have to be loaded into memory. Once sealed, the
// body can be pulled in bounded chunks with Read, or collapsed into a single
// buffer with Buffer when the caller needs the complete payload up front.
package formdata
