// Package redis implements hrAuth.Directory on Redis.
//
// Tenants and accounts are stored as JSON values. Uniqueness of tenant code, login
// identifier, and email is enforced by claim keys that Lua scripts check and write in
// the same atomic step as the record itself.
//
// Key layout (prefix p):
//
//	p:tenant:<id>                      tenant JSON
//	p:tenants                          zset of tenant IDs by creation time
//	p:code:<CODE>                      tenant ID claim
//	p:account:<id>                     account JSON
//	p:loginid:<LOGINID>                account ID claim
//	p:email:<email>                    account ID claim
//	p:accounts:<tenantID>:<role>       zset of account IDs by creation time
//
// Scripts span several keys, so a Redis Cluster deployment needs a hash-tagged prefix
// such as "{hr}".
package redis
